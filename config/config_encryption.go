package config

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/thrasher-corp/feeestimator/common/crypto"
	"github.com/thrasher-corp/feeestimator/log"
	"golang.org/x/crypto/scrypt"
)

const (
	// EncryptConfirmString has a the general confirmation string to allow us to
	// see if the file is correctly encrypted
	EncryptConfirmString = "THORS-HAMMER"
	// SaltPrefix string
	SaltPrefix = "~FEES~SO~SALTY~"
	// SaltRandomLength is the number of random bytes to append after the prefix string
	SaltRandomLength = 12

	minPasswordLength = 8
)

var (
	errAESBlockSize    = errors.New("config file data is too small for the AES required block size")
	errNoPrefix        = errors.New("data does not start with the encryption confirmation string")
	errDecryptFailed   = errors.New("failed to decrypt config, wrong password or corrupted file")
	errPasswordTooWeak = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	errAlreadyInState  = errors.New("config file is already in the requested state")
)

// EncryptConfigData encrypts configuration data with a key derived from
// password and returns it prefixed with the confirmation string and salt
func EncryptConfigData(configData, password []byte) ([]byte, error) {
	if len(password) < minPasswordLength {
		return nil, errPasswordTooWeak
	}
	salt, err := crypto.GetRandomSalt([]byte(SaltPrefix), SaltRandomLength)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(EncryptConfirmString)+len(salt)+len(nonce)+len(configData)+gcm.Overhead())
	out = append(out, EncryptConfirmString...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, configData, nil), nil
}

// DecryptConfigData decrypts configuration data produced by EncryptConfigData
func DecryptConfigData(data, password []byte) ([]byte, error) {
	if !IsEncrypted(data) {
		return nil, errNoPrefix
	}
	data = data[len(EncryptConfirmString):]
	saltLen := len(SaltPrefix) + SaltRandomLength
	if len(data) < saltLen {
		return nil, errAESBlockSize
	}
	salt, data := data[:saltLen], data[saltLen:]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize()+gcm.Overhead() {
		return nil, errAESBlockSize
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errDecryptFailed
	}
	return plain, nil
}

// IsEncrypted confirms that the encryption confirmation string is found
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(EncryptConfirmString))
}

// EncryptConfigFile encrypts the plain config file at path in place
func EncryptConfigFile(path string, password []byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if IsEncrypted(data) {
		return fmt.Errorf("%w: %s is encrypted", errAlreadyInState, path)
	}
	enc, err := EncryptConfigData(data, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, enc, 0o600); err != nil {
		return err
	}
	log.Infof(log.ConfigMgr, "Config file %s encrypted", path)
	return nil
}

// DecryptConfigFile decrypts the config file at path in place
func DecryptConfigFile(path string, password []byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !IsEncrypted(data) {
		return fmt.Errorf("%w: %s is not encrypted", errAlreadyInState, path)
	}
	plain, err := DecryptConfigData(data, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, plain, 0o600); err != nil {
		return err
	}
	log.Infof(log.ConfigMgr, "Config file %s decrypted", path)
	return nil
}

func newGCM(password, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, 32768, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
