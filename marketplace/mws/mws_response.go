package mws

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/thrasher-corp/feeestimator/log"
	"golang.org/x/net/html/charset"
)

// element is a parsed markup node. text holds every character of the
// element's subtree in document order.
type element struct {
	name     string
	text     []byte
	children []*element
}

// ExtractFeeEstimate pulls the fee fields out of a GetMyFeesEstimate response
// body. It never fails: missing elements leave their field empty and
// malformed markup yields whatever was read before the syntax error.
func ExtractFeeEstimate(body []byte) *FeeEstimateResult {
	root := parseElements(body)
	r := &FeeEstimateResult{}
	for _, f := range []struct {
		dst  *string
		path []string
	}{
		{&r.TotalFee, []string{"TotalFeesEstimate", "Amount"}},
		{&r.CurrencyCode, []string{"TotalFeesEstimate", "CurrencyCode"}},
		{&r.SellingPrice, []string{"ListingPrice", "Amount"}},
		{&r.Shipping, []string{"Shipping", "Amount"}},
		{&r.Status, []string{"FeesEstimateResult", "Status"}},
		{&r.ErrorCode, []string{"Error", "Code"}},
		{&r.ErrorMessage, []string{"Error", "Message"}},
	} {
		if e := root.descendant(f.path, 0); e != nil {
			*f.dst = strings.TrimSpace(string(e.text))
		}
	}
	return r
}

func parseElements(body []byte) *element {
	root := &element{}
	stack := []*element{root}

	d := xml.NewDecoder(bytes.NewReader(body))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := d.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debugf(log.MWSSys, "Fee estimate response parsing stopped: %v", err)
			}
			return root
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &element{name: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, e)
			stack = append(stack, e)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			for _, e := range stack[1:] {
				e.text = append(e.text, t...)
			}
		}
	}
}

// descendant returns the first element in document order named by the last
// entry of path whose ancestors contain the preceding entries in order.
// matched counts the entries already satisfied by e and its ancestors.
func (e *element) descendant(path []string, matched int) *element {
	last := len(path) - 1
	for _, c := range e.children {
		if matched == last && strings.EqualFold(c.name, path[last]) {
			return c
		}
		next := matched
		if matched < last && strings.EqualFold(c.name, path[matched]) {
			next++
		}
		if found := c.descendant(path, next); found != nil {
			return found
		}
	}
	return nil
}
