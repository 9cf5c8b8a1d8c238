package capability

import (
	"crypto/md5" //nolint:gosec // scripts probe legacy services that still use MD5
	"crypto/sha1" //nolint:gosec // scripts probe legacy services that still use SHA-1
	"crypto/sha256"
	"crypto/sha512"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/crypto/sha3"

	"github.com/mglen/authprobe/internal/script"
)

// DigestModule exposes the digest family: md5, sha1, sha2_256, sha2_512,
// sha3_256, sha3_512. Each accepts a byte sequence and returns the raw
// digest bytes; only argument conversion can fail.
type DigestModule struct{}

// NewDigestModule creates a new digest module.
func NewDigestModule() *DigestModule {
	return &DigestModule{}
}

// Name returns the module name.
func (m *DigestModule) Name() string {
	return "digest"
}

// Register registers the module into the Lua state.
func (m *DigestModule) Register(L *lua.LState, _ *Context) error {
	L.SetGlobal("md5", L.NewFunction(digestFn(func(b []byte) []byte {
		sum := md5.Sum(b) //nolint:gosec
		return sum[:]
	})))
	L.SetGlobal("sha1", L.NewFunction(digestFn(func(b []byte) []byte {
		sum := sha1.Sum(b) //nolint:gosec
		return sum[:]
	})))
	L.SetGlobal("sha2_256", L.NewFunction(digestFn(func(b []byte) []byte {
		sum := sha256.Sum256(b)
		return sum[:]
	})))
	L.SetGlobal("sha2_512", L.NewFunction(digestFn(func(b []byte) []byte {
		sum := sha512.Sum512(b)
		return sum[:]
	})))
	L.SetGlobal("sha3_256", L.NewFunction(digestFn(func(b []byte) []byte {
		sum := sha3.Sum256(b)
		return sum[:]
	})))
	L.SetGlobal("sha3_512", L.NewFunction(digestFn(func(b []byte) []byte {
		sum := sha3.Sum512(b)
		return sum[:]
	})))
	return nil
}

// digestFn wraps a digest over the common bytes-in, bytes-out contract.
func digestFn(sum func([]byte) []byte) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 1)
		b := checkBytes(L, 1)

		L.Push(script.BytesValue(sum(b)))
		return 1
	}
}
