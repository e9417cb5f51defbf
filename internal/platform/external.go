package platform

import (
	"errors"

	"github.com/imamik/psclink/internal/config"
)

// External reconciles against a real provider reached through the
// connector supplied with [WithCredentials].
type External struct {
	base
}

func newExternal(o *options) (*External, error) {
	if o.tokens == nil || o.connect == nil {
		return nil, errors.New("the external platform requires a token source and a connector")
	}
	return &External{base: newBase(o.tokens, o.connect, o)}, nil
}

// Name implements Platform.
func (e *External) Name() string { return config.PlatformExternal }
