package capability

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestHexExample(t *testing.T) {
	L, _ := setupCatalogTest(t)

	if err := L.DoString(`out = hex({0, 255, 16})`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	if got := L.GetGlobal("out"); got != lua.LString("00ff10") {
		t.Errorf("hex({0,255,16}) = %v, want 00ff10", got)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	L, _ := setupCatalogTest(t)

	err := L.DoString(`
		encoded = base64_encode("foobar")
		decoded = base64_decode(encoded)
	`)
	if err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	if got := L.GetGlobal("encoded"); got != lua.LString("Zm9vYmFy") {
		t.Errorf("base64_encode = %v, want Zm9vYmFy", got)
	}
	if got := L.GetGlobal("decoded"); got != lua.LString("foobar") {
		t.Errorf("base64_decode = %v, want foobar", got)
	}
}

func TestBase64EncodeByteArray(t *testing.T) {
	L, _ := setupCatalogTest(t)

	if err := L.DoString(`out = base64_encode({0, 255, 16})`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	if got := L.GetGlobal("out"); got != lua.LString("AP8Q") {
		t.Errorf("base64_encode({0,255,16}) = %v, want AP8Q", got)
	}
}

func TestBase64DecodeMalformed(t *testing.T) {
	L, ctx := setupCatalogTest(t)

	// Malformed input is an operational failure: false result plus a
	// diagnostic in the error slot, no Lua error.
	if err := L.DoString(`out = base64_decode("====")`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	if got := L.GetGlobal("out"); got != lua.LFalse {
		t.Errorf("base64_decode(\"====\") = %v, want false", got)
	}

	msg, ok := ctx.LastError()
	if !ok {
		t.Fatal("error slot empty after failed decode")
	}
	if !strings.Contains(msg, "invalid base64 input") {
		t.Errorf("error slot = %q", msg)
	}
}
