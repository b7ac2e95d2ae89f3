package audit

import (
	"fmt"
	"sync"
)

var (
	globalWriter Writer = NopWriter{}
	globalMu     sync.RWMutex

	enabled bool
)

// Init initializes the global audit logger with the given writer.
// A nil writer disables audit logging.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
		return nil
	}

	globalWriter = w
	enabled = true
	return nil
}

// InitFile initializes the global audit logger with a file writer.
// An empty path disables audit logging.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}

	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}

	return Init(w)
}

// Close closes the global audit writer.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	err := globalWriter.Close()
	globalWriter = NopWriter{}
	enabled = false
	return err
}

// Enabled returns whether audit logging is active.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes an audit event to the global writer.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// MustLog writes an audit event and returns an error suitable for
// failing the parent operation if audit logging fails.
func MustLog(event *Event) error {
	if err := Log(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// LogKeyGenerated records the creation of a new key.
func LogKeyGenerated(algorithm, curve string, success bool) error {
	event := NewEvent(EventKeyGenerated, toResult(success)).
		WithObject(Object{Type: "key", Algorithm: algorithm}).
		WithContext(Context{Curve: curve, Source: "generated"})
	return MustLog(event)
}

// LogKeyLoaded records a key load from PEM data.
func LogKeyLoaded(algorithm, path string, publicOnly, success bool) error {
	event := NewEvent(EventKeyLoaded, toResult(success)).
		WithObject(Object{Type: "key", Algorithm: algorithm, Path: path}).
		WithContext(Context{Source: "pem", Public: publicOnly})
	return MustLog(event)
}

// LogKeyImported records a key built from raw parameters or an HSM.
func LogKeyImported(algorithm, source string, success bool) error {
	event := NewEvent(EventKeyImported, toResult(success)).
		WithObject(Object{Type: "key", Algorithm: algorithm}).
		WithContext(Context{Source: source, Public: true})
	return MustLog(event)
}

// LogSign records a signing operation.
func LogSign(algorithm string, success bool) error {
	event := NewEvent(EventSign, toResult(success)).
		WithObject(Object{Type: "key", Algorithm: algorithm})
	return MustLog(event)
}

// LogVerify records a verification and its outcome.
func LogVerify(algorithm string, verified bool) error {
	event := NewEvent(EventVerify, ResultSuccess).
		WithObject(Object{Type: "key", Algorithm: algorithm}).
		WithContext(Context{Verified: verified})
	return MustLog(event)
}

func toResult(success bool) Result {
	if success {
		return ResultSuccess
	}
	return ResultFailure
}
