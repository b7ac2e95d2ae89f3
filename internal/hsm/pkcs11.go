//go:build cgo

package hsm

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/miekg/pkcs11"

	"github.com/keyfoundry/keybind/internal/native"
)

// sessionPool manages PKCS#11 sessions for a single module and slot.
// Sessions are reused across operations and cleaned up on Close.
type sessionPool struct {
	mu        sync.Mutex
	ctx       *pkcs11.Ctx
	slotID    uint
	pin       string
	available []pkcs11.SessionHandle
	inUse     map[pkcs11.SessionHandle]bool
	loginDone bool
	closed    bool
}

var (
	// pools stores singleton pools per (module, slotID) combination
	pools   = make(map[string]*sessionPool)
	poolsMu sync.Mutex
)

func poolKey(modulePath string, slotID uint) string {
	return fmt.Sprintf("%s:%d", modulePath, slotID)
}

// getPool returns the session pool for a module and slot, initializing
// the module on first use.
func getPool(modulePath string, slotID uint, pin string) (*sessionPool, error) {
	poolsMu.Lock()
	defer poolsMu.Unlock()

	key := poolKey(modulePath, slotID)
	if pool, ok := pools[key]; ok {
		pool.mu.Lock()
		if pool.closed {
			pool.mu.Unlock()
			delete(pools, key)
		} else {
			pool.mu.Unlock()
			return pool, nil
		}
	}

	ctx := pkcs11.New(modulePath)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load PKCS#11 module: %s", modulePath)
	}

	if err := ctx.Initialize(); err != nil {
		if p11err, ok := err.(pkcs11.Error); !ok || p11err != pkcs11.CKR_CRYPTOKI_ALREADY_INITIALIZED {
			ctx.Destroy()
			return nil, fmt.Errorf("failed to initialize PKCS#11 module: %w", err)
		}
	}

	pool := &sessionPool{
		ctx:    ctx,
		slotID: slotID,
		pin:    pin,
		inUse:  make(map[pkcs11.SessionHandle]bool),
	}
	pools[key] = pool
	return pool, nil
}

// Acquire reserves a session, creating one if none is available. The
// release function MUST be called when done.
func (p *sessionPool) Acquire() (pkcs11.SessionHandle, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, nil, fmt.Errorf("session pool is closed")
	}

	var session pkcs11.SessionHandle
	var err error

	if len(p.available) > 0 {
		session = p.available[len(p.available)-1]
		p.available = p.available[:len(p.available)-1]
	} else {
		session, err = p.ctx.OpenSession(p.slotID, pkcs11.CKF_SERIAL_SESSION)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to open session: %w", err)
		}

		// Login is per-token, not per-session
		if p.pin != "" && !p.loginDone {
			if err := p.ctx.Login(session, pkcs11.CKU_USER, p.pin); err != nil {
				if e, ok := err.(pkcs11.Error); !ok || e != pkcs11.CKR_USER_ALREADY_LOGGED_IN {
					_ = p.ctx.CloseSession(session)
					return 0, nil, fmt.Errorf("failed to login: %w", err)
				}
			}
			p.loginDone = true
		}
	}

	p.inUse[session] = true

	release := func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		delete(p.inUse, session)
		if p.closed {
			_ = p.ctx.CloseSession(session)
			return
		}
		p.available = append(p.available, session)
	}

	return session, release, nil
}

// Close closes all sessions and finalizes the module.
func (p *sessionPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, s := range p.available {
		_ = p.ctx.CloseSession(s)
	}
	for s := range p.inUse {
		_ = p.ctx.CloseSession(s)
	}
	p.available = nil
	p.inUse = map[pkcs11.SessionHandle]bool{}

	if err := p.ctx.Finalize(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	p.ctx.Destroy()
	return nil
}

// ClosePools closes every open session pool. Call at program shutdown.
func ClosePools() {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	for key, pool := range pools {
		_ = pool.Close()
		delete(pools, key)
	}
}

// ListSlots lists the slots of a PKCS#11 module.
func ListSlots(modulePath string) ([]SlotInfo, error) {
	ctx := pkcs11.New(modulePath)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load PKCS#11 module: %s", modulePath)
	}
	defer ctx.Destroy()

	if err := ctx.Initialize(); err != nil {
		if p11err, ok := err.(pkcs11.Error); !ok || p11err != pkcs11.CKR_CRYPTOKI_ALREADY_INITIALIZED {
			return nil, fmt.Errorf("failed to initialize PKCS#11 module: %w", err)
		}
	}
	defer func() { _ = ctx.Finalize() }()

	ids, err := ctx.GetSlotList(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	slots := make([]SlotInfo, 0, len(ids))
	for _, id := range ids {
		info := SlotInfo{ID: id}
		if si, err := ctx.GetSlotInfo(id); err == nil {
			info.Description = si.SlotDescription
			info.HasToken = si.Flags&pkcs11.CKF_TOKEN_PRESENT != 0
		}
		if info.HasToken {
			if ti, err := ctx.GetTokenInfo(id); err == nil {
				info.TokenLabel = ti.Label
				info.TokenSerial = ti.SerialNumber
			}
		}
		slots = append(slots, info)
	}
	return slots, nil
}

// LoadPublicKey reads a CKO_PUBLIC_KEY object from the token and returns
// it as a Go public key.
func LoadPublicKey(cfg Config) (crypto.PublicKey, error) {
	pool, slot, err := resolvePool(cfg)
	if err != nil {
		return nil, err
	}

	session, release, err := pool.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	obj, err := findPublicKey(pool.ctx, session, cfg)
	if err != nil {
		return nil, fmt.Errorf("find key in slot %d: %w", slot, err)
	}
	return readPublicKey(pool.ctx, session, obj)
}

// resolvePool locates the slot named by the config and returns its pool.
func resolvePool(cfg Config) (*sessionPool, uint, error) {
	if cfg.SlotID != nil {
		pool, err := getPool(cfg.ModulePath, *cfg.SlotID, cfg.PIN)
		return pool, *cfg.SlotID, err
	}

	slots, err := ListSlots(cfg.ModulePath)
	if err != nil {
		return nil, 0, err
	}
	for _, s := range slots {
		if !s.HasToken {
			continue
		}
		if cfg.TokenSerial != "" && s.TokenSerial != cfg.TokenSerial {
			continue
		}
		if cfg.TokenLabel != "" && s.TokenLabel != cfg.TokenLabel {
			continue
		}
		pool, err := getPool(cfg.ModulePath, s.ID, cfg.PIN)
		return pool, s.ID, err
	}
	return nil, 0, fmt.Errorf("no token matching label=%q serial=%q", cfg.TokenLabel, cfg.TokenSerial)
}

// findPublicKey locates a CKO_PUBLIC_KEY object by label and/or CKA_ID.
func findPublicKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, cfg Config) (pkcs11.ObjectHandle, error) {
	template := []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, pkcs11.CKO_PUBLIC_KEY),
	}
	if cfg.KeyLabel != "" {
		template = append(template, pkcs11.NewAttribute(pkcs11.CKA_LABEL, cfg.KeyLabel))
	}
	if cfg.KeyID != "" {
		id, err := hex.DecodeString(cfg.KeyID)
		if err != nil {
			return 0, fmt.Errorf("invalid key ID %q: %w", cfg.KeyID, err)
		}
		template = append(template, pkcs11.NewAttribute(pkcs11.CKA_ID, id))
	}

	if err := ctx.FindObjectsInit(session, template); err != nil {
		return 0, fmt.Errorf("find init: %w", err)
	}
	handles, _, err := ctx.FindObjects(session, 2)
	if finErr := ctx.FindObjectsFinal(session); err == nil {
		err = finErr
	}
	if err != nil {
		return 0, fmt.Errorf("find objects: %w", err)
	}

	switch len(handles) {
	case 0:
		return 0, fmt.Errorf("no public key matching label=%q id=%q", cfg.KeyLabel, cfg.KeyID)
	case 1:
		return handles[0], nil
	default:
		return 0, fmt.Errorf("multiple public keys match label=%q id=%q", cfg.KeyLabel, cfg.KeyID)
	}
}

// readPublicKey extracts a Go public key from a PKCS#11 object.
func readPublicKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, obj pkcs11.ObjectHandle) (crypto.PublicKey, error) {
	attrs, err := ctx.GetAttributeValue(session, obj, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_KEY_TYPE, nil),
	})
	if err != nil {
		return nil, fmt.Errorf("read key type: %w", err)
	}
	keyType := bytesToUlong(attrs[0].Value)

	switch keyType {
	case pkcs11.CKK_EC:
		return readECPublicKey(ctx, session, obj)
	case pkcs11.CKK_RSA:
		return readRSAPublicKey(ctx, session, obj)
	default:
		return nil, fmt.Errorf("unsupported key type: 0x%x", keyType)
	}
}

func readECPublicKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, obj pkcs11.ObjectHandle) (*ecdsa.PublicKey, error) {
	attrs, err := ctx.GetAttributeValue(session, obj, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_EC_PARAMS, nil),
		pkcs11.NewAttribute(pkcs11.CKA_EC_POINT, nil),
	})
	if err != nil {
		return nil, fmt.Errorf("read EC attributes: %w", err)
	}

	curve, err := curveFromParams(attrs[0].Value)
	if err != nil {
		return nil, err
	}

	// CKA_EC_POINT is a DER OCTET STRING wrapping the point octets
	var point []byte
	if rest, err := asn1.Unmarshal(attrs[1].Value, &point); err != nil || len(rest) != 0 {
		// Some tokens store the raw point without the wrapper
		point = attrs[1].Value
	}

	x, y, err := native.DecodePoint(curve, point)
	if err != nil {
		return nil, fmt.Errorf("decode EC point: %w", err)
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

func readRSAPublicKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, obj pkcs11.ObjectHandle) (*rsa.PublicKey, error) {
	attrs, err := ctx.GetAttributeValue(session, obj, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_MODULUS, nil),
		pkcs11.NewAttribute(pkcs11.CKA_PUBLIC_EXPONENT, nil),
	})
	if err != nil {
		return nil, fmt.Errorf("read RSA attributes: %w", err)
	}

	n := new(big.Int).SetBytes(attrs[0].Value)
	e := new(big.Int).SetBytes(attrs[1].Value)
	if n.Sign() == 0 || e.Sign() == 0 || !e.IsInt64() {
		return nil, fmt.Errorf("invalid RSA public key attributes")
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

var namedCurveOIDs = map[string]elliptic.Curve{
	"1.3.132.0.33":        elliptic.P224(),
	"1.2.840.10045.3.1.7": elliptic.P256(),
	"1.3.132.0.34":        elliptic.P384(),
	"1.3.132.0.35":        elliptic.P521(),
}

// curveFromParams maps a DER-encoded CKA_EC_PARAMS OID to a curve.
func curveFromParams(der []byte) (elliptic.Curve, error) {
	var oid asn1.ObjectIdentifier
	if rest, err := asn1.Unmarshal(der, &oid); err != nil || len(rest) != 0 {
		return nil, fmt.Errorf("parse EC params: unsupported encoding")
	}
	if curve, ok := namedCurveOIDs[oid.String()]; ok {
		return curve, nil
	}
	return nil, fmt.Errorf("unsupported curve OID: %s", oid)
}

// bytesToUlong decodes a CK_ULONG attribute value (native byte order).
func bytesToUlong(b []byte) uint {
	var v uint
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint(b[i])
	}
	return v
}
