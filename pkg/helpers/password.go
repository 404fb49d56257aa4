package helpers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
)

var errInvalidPHC = errors.New("invalid argon2id hash")

// Argon2Params tunes the argon2id KDF. Memory is in KiB.
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Time:        3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHasher hashes new passwords with the configured algorithm and
// verifies stored hashes of either supported algorithm.
type PasswordHasher struct {
	algo       string
	argon      Argon2Params
	bcryptCost int
}

func NewPasswordHasher(algo string, params Argon2Params) (*PasswordHasher, error) {
	switch algo {
	case "", HasherArgon2id:
		algo = HasherArgon2id
	case HasherBcrypt:
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", algo)
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 || params.SaltLength == 0 || params.KeyLength == 0 {
		return nil, errors.New("argon2 parameters must be positive")
	}
	return &PasswordHasher{algo: algo, argon: params, bcryptCost: bcrypt.DefaultCost}, nil
}

// WithBcryptCost overrides the bcrypt work factor.
func (h *PasswordHasher) WithBcryptCost(cost int) *PasswordHasher {
	h.bcryptCost = cost
	return h
}

func (h *PasswordHasher) Algorithm() string { return h.algo }

// Hash returns an encoded hash of plain. argon2id hashes use the PHC string format.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if h.algo == HasherBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	salt := make([]byte, h.argon.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, h.argon.Time, h.argon.Memory, h.argon.Parallelism, h.argon.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.argon.Memory,
		h.argon.Time,
		h.argon.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare reports whether plain matches hash. The comparison is constant time
// for both algorithms; unparseable hashes never match.
func (h *PasswordHasher) Compare(hash, plain string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		p, salt, key, err := decodePHC(hash)
		if err != nil {
			return false
		}
		computed := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
		return subtle.ConstantTimeCompare(computed, key) == 1
	case strings.HasPrefix(hash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	default:
		return false
	}
}

func decodePHC(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != HasherArgon2id {
		return p, nil, nil, errInvalidPHC
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, nil, errInvalidPHC
	}
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return p, nil, nil, errInvalidPHC
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return p, nil, nil, errInvalidPHC
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return p, nil, nil, errInvalidPHC
			}
			p.Parallelism = uint8(n)
		default:
			return p, nil, nil, errInvalidPHC
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, errInvalidPHC
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errInvalidPHC
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errInvalidPHC
	}
	return p, salt, key, nil
}
