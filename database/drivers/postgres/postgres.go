package postgres

import (
	"database/sql"
	"net"
	"net/url"
	"strconv"

	// import postgres driver
	_ "github.com/lib/pq"
	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/database/drivers"
)

const defaultSSLMode = "disable"

// Connect opens a connection pool to the postgres database described by
// details
func Connect(details *drivers.ConnectionDetails) (*sql.DB, error) {
	if details == nil {
		return nil, database.ErrNilConfig
	}
	if details.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	return sql.Open(database.DBPostgreSQL, DSN(details))
}

// DSN returns the connection URL for details with the user info escaped
func DSN(details *drivers.ConnectionDetails) string {
	sslMode := details.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(details.Username, details.Password),
		Host:     net.JoinHostPort(details.Host, strconv.FormatUint(uint64(details.Port), 10)),
		Path:     "/" + details.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}
