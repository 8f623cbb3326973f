package di

import (
	"errors"
	"fmt"
)

// Capability は起動に必要となりうる協調コンポーネントの名前です。
type Capability string

const (
	CapCredentialSealer Capability = "credential_sealer"
	CapLLM              Capability = "llm"
	CapVision           Capability = "vision"
	CapTokenSigning     Capability = "token_signing"
	CapOperatorAuth     Capability = "operator_auth"
)

// ServerCapabilities はAPIサーバーの起動に必須のコンポーネントです。
// vision は任意です（無い場合はテキストのみ再送で画像の説明を省きます）。
var ServerCapabilities = []Capability{
	CapCredentialSealer,
	CapLLM,
	CapTokenSigning,
	CapOperatorAuth,
}

// MissingError は利用できないコンポーネントを表します。
type MissingError struct {
	Capability Capability
	Reason     string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s unavailable: %s", e.Capability, e.Reason)
}

// Has は cap が利用可能かを返します。
func (c *Container) Has(cp Capability) bool {
	_, missing := c.missing[cp]
	return !missing
}

// Require は caps のうち欠けているものをすべてまとめたエラーを返します。
// 返るエラーからは errors.As で各 *MissingError を取り出せます。
func (c *Container) Require(caps ...Capability) error {
	var errs []error
	for _, cp := range caps {
		if reason, ok := c.missing[cp]; ok {
			errs = append(errs, &MissingError{Capability: cp, Reason: reason})
		}
	}
	return errors.Join(errs...)
}
