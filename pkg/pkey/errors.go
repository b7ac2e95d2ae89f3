package pkey

import (
	"errors"

	"github.com/keyfoundry/keybind/pkg/membuf"
)

// Sentinel errors for errors.Is() checks. Failures wrap one of these and
// carry the provider's message text.
var (
	// ErrInvalidArgument is returned when a caller-supplied value does not
	// satisfy the buffer or type contract. It is detected before any
	// provider call, so no partial state exists.
	ErrInvalidArgument = membuf.ErrInvalidArgument

	// ErrParameter is returned when the provider fails to decode a supplied
	// numeric or octet value. The target field keeps its prior value.
	ErrParameter = errors.New("pkey: parameter decode failed")

	// ErrKeyLoad is returned when the provider's PEM parser yields no key
	// structure (bad format, wrong passphrase, truncated input).
	ErrKeyLoad = errors.New("pkey: key load failed")

	// ErrInvalidKey is returned when an operation requiring a populated key
	// is invoked on a handle that is closed or was never fully constructed,
	// or when signing is attempted without private material.
	ErrInvalidKey = errors.New("pkey: key is not valid")
)

// IsInvalidArgument reports whether err is or wraps ErrInvalidArgument.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsParameter reports whether err is or wraps ErrParameter.
func IsParameter(err error) bool { return errors.Is(err, ErrParameter) }

// IsKeyLoad reports whether err is or wraps ErrKeyLoad.
func IsKeyLoad(err error) bool { return errors.Is(err, ErrKeyLoad) }

// IsInvalidKey reports whether err is or wraps ErrInvalidKey.
func IsInvalidKey(err error) bool { return errors.Is(err, ErrInvalidKey) }
