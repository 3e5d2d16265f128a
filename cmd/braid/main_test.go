package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/rng"
	"github.com/braidql/braid/internal/value"
)

func TestNoParserReportsUnimplemented(t *testing.T) {
	_, err := noParser{}.Parse("let x = 1")
	if kind, ok := braiderr.Of(err); !ok || kind != braiderr.Unimplemented {
		t.Fatalf("err = %v, want Unimplemented", err)
	}
}

func TestPrintBannerUsesPlainPrefixWhenNotATTY(t *testing.T) {
	var buf bytes.Buffer
	ctx := value.NewRootContext("proj", &buf, rng.New())
	printBanner(ctx, false)
	if !strings.HasPrefix(buf.String(), "::") {
		t.Fatalf("printBanner(isTTY=false) = %q, want :: prefix", buf.String())
	}
	if !strings.Contains(buf.String(), "proj") {
		t.Fatalf("printBanner output = %q, want it to mention the Context path", buf.String())
	}
}

func TestPrintBannerUsesUnicodePrefixWhenTTY(t *testing.T) {
	var buf bytes.Buffer
	ctx := value.NewRootContext("proj", &buf, rng.New())
	printBanner(ctx, true)
	if strings.HasPrefix(buf.String(), "::") {
		t.Fatalf("printBanner(isTTY=true) should not use the plain :: prefix: got %q", buf.String())
	}
}
