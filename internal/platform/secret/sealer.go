// Package secret は保存時に暗号化が必要な値（LLMのAPIキーなど）を封緘します。
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo は鍵導出のコンテキストラベルです。用途ごとに変えることで鍵を分離します。
const hkdfInfo = "trade_advisor/settings/v1"

// ErrOpen は復号に失敗した場合に返されます（鍵違い・改ざん・形式不正）。
var ErrOpen = errors.New("secret: cannot open sealed value")

// Sealer は XChaCha20-Poly1305 で値を暗号化・復号します。
type Sealer struct {
	key []byte
}

// NewSealer は設定されたシークレット文字列から HKDF-SHA256 で32バイト鍵を導出します。
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("secret: empty key material")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("secret: derive key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal は plaintext を暗号化し、nonce を先頭に付けた base64 文字列を返します。
// aad は暗号文を特定の用途（設定キー名など）に束縛するために使います。
func (s *Sealer) Seal(plaintext, aad string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secret: nonce: %w", err)
	}
	out := aead.Seal(nonce, nonce, []byte(plaintext), []byte(aad))
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open は Seal の出力を復号します。
func (s *Sealer) Open(sealed, aad string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrOpen
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrOpen
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, []byte(aad))
	if err != nil {
		return "", ErrOpen
	}
	return string(pt), nil
}
