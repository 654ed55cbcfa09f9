package resolver

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"

	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"gorm.io/datatypes"
)

type encryptedPayload struct {
	Version    int    `json:"version"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// DeriveKey turns the configured secret into a 32-byte AES key. An empty
// secret yields nil, which disables encryption.
func DeriveKey(secret string) []byte {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// EncryptConfig seals a processor config map into the stored envelope.
// With a nil key the map is stored as plain JSON.
func EncryptConfig(key []byte, config map[string]any) (datatypes.JSON, error) {
	plain, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return datatypes.JSON(plain), nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, nonce, plain, nil)
	envelope, err := json.Marshal(encryptedPayload{
		Version:    1,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed),
	})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(envelope), nil
}

func decryptConfig(key []byte, stored datatypes.JSON) (map[string]any, error) {
	if len(stored) == 0 {
		return nil, domain.ErrInvalidConfig
	}

	var out map[string]any
	if err := json.Unmarshal(stored, &out); err != nil {
		return nil, domain.ErrInvalidConfig
	}
	if _, sealed := out["ciphertext"]; !sealed {
		if len(out) == 0 {
			return nil, domain.ErrInvalidConfig
		}
		return out, nil
	}

	if key == nil {
		return nil, domain.ErrInvalidConfig
	}
	var envelope encryptedPayload
	if err := json.Unmarshal(stored, &envelope); err != nil {
		return nil, domain.ErrInvalidConfig
	}
	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}
	sealed, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, domain.ErrInvalidConfig
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}

	var config map[string]any
	if err := json.Unmarshal(plain, &config); err != nil {
		return nil, domain.ErrInvalidConfig
	}
	if len(config) == 0 {
		return nil, domain.ErrInvalidConfig
	}
	return config, nil
}
