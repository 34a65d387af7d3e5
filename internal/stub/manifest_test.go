package stub

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManifestRoundTrip(t *testing.T) {
	original := Stub{
		Module: "cli_entrypoint",
		Record: "CliEntrypointTemplate",
		Output: "main.gen",
		Fields: []Field{
			{Name: "options", Type: FieldTypeArray, Default: []any{"--verbose"}},
			{Name: "package_name", Type: FieldTypeString, Required: true, Description: "import path tail"},
		},
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Code generated by templateer") {
		t.Fatalf("manifest missing header:\n%s", data)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	s := Stub{
		Module: "greet",
		Record: "GreetTemplate",
		Fields: []Field{
			{Name: "greeting", Type: FieldTypeAny},
			{Name: "name", Type: FieldTypeString},
		},
	}

	first, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected byte-identical output for unchanged stub")
	}
}

func TestDecodeRejectsMissingModule(t *testing.T) {
	if _, err := Decode([]byte("record: FooTemplate\nfields: []\n")); err == nil {
		t.Fatal("expected error for manifest without module name")
	}
}

func TestManifestName(t *testing.T) {
	if got, want := ManifestName("greet"), "greet_model.yaml"; got != want {
		t.Fatalf("ManifestName = %q, want %q", got, want)
	}
}
