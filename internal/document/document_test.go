package document

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<CONFIG>
  <BUSUNIT SERNUM="B1" TYP="X">
    <SUB3RS485 ADRESSE="A1"/>
    <OTHER/>
    <SUB3MODULE ADRESSE="A2"/>
  </BUSUNIT>
  <DISPLAY SERNUM="D1" ADRESSE="1" SUBC="A1"/>
</CONFIG>`

func TestParseKeepsAttributeOrder(t *testing.T) {
	doc, err := ParseBytes([]byte(`<R><CHANNEL Z="1" A="2" M="3"/></R>`), "inline")
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	ch := doc.ElementsByTag("CHANNEL")
	if len(ch) != 1 {
		t.Fatalf("expected 1 CHANNEL, got %d", len(ch))
	}
	want := []string{"Z", "A", "M"}
	if got := ch[0].AttrNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected attribute order %v, got %v", want, got)
	}
}

func TestElementsByTagDocumentOrder(t *testing.T) {
	doc, err := ParseBytes([]byte(`<R><D SERNUM="1"/><X><D SERNUM="2"><D SERNUM="3"/></D></X><D SERNUM="4"/></R>`), "inline")
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	var got []string
	for _, e := range doc.ElementsByTag("D") {
		got = append(got, e.Attr("SERNUM"))
	}
	if strings.Join(got, ",") != "1,2,3,4" {
		t.Errorf("expected document order 1,2,3,4, got %v", got)
	}
}

func TestChildrenNamed(t *testing.T) {
	doc, err := ParseBytes([]byte(sample), "inline")
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	bus := doc.ElementsByTag("BUSUNIT")[0]
	subs := bus.ChildrenNamed("SUB3RS485", "SUB3MODULE")
	if len(subs) != 2 {
		t.Fatalf("expected 2 sub nodes, got %d", len(subs))
	}
	if subs[0].Attr("ADRESSE") != "A1" || subs[1].Attr("ADRESSE") != "A2" {
		t.Errorf("unexpected sub node order: %s, %s", subs[0].Attr("ADRESSE"), subs[1].Attr("ADRESSE"))
	}
}

func TestAttrMissingIsEmpty(t *testing.T) {
	e := &Element{Name: "X", Attrs: []Attr{{Name: "A", Value: "1"}}}
	if v := e.Attr("B"); v != "" {
		t.Errorf("expected empty string for missing attribute, got %q", v)
	}
	if _, ok := e.Lookup("B"); ok {
		t.Error("Lookup reported a missing attribute as present")
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"unclosed":   `<R><CHANNEL A="1"></R>`,
		"garbage":    `this is not xml`,
		"two roots":  `<A/><B/>`,
		"duplicate":  `<R><CHANNEL A="1" A="2"/></R>`,
		"nested dup": `<R><BUSUNIT><SUB3RS485 ADRESSE="1" ADRESSE="1"/></BUSUNIT></R>`,
		"whitespace": "   \n ",
		"empty":      "",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBytes([]byte(input), name)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestParseNormalizesAttributeWhitespace(t *testing.T) {
	input := "<R><CHANNEL NAME=\"Line\n1\" NOTE=\"a\tb\r\nc\"/></R>"
	doc, err := ParseBytes([]byte(input), "ws")
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	ch := doc.ElementsByTag("CHANNEL")[0]
	if got := ch.Attr("NAME"); got != "Line 1" {
		t.Errorf("expected %q, got %q", "Line 1", got)
	}
	if got := ch.Attr("NOTE"); got != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", got)
	}
}

func TestParseLatin1(t *testing.T) {
	// "Stra\xdfe" is ISO-8859-1 for "Straße".
	input := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><R><CHANNEL NAME=\"Stra\xdfe\"/></R>")
	doc, err := ParseBytes(input, "latin1")
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if got := doc.ElementsByTag("CHANNEL")[0].Attr("NAME"); got != "Straße" {
		t.Errorf("expected decoded value Straße, got %q", got)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.xml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if doc.Source != path {
		t.Errorf("expected source %s, got %s", path, doc.Source)
	}
	if doc.Count() != 6 {
		t.Errorf("expected 6 elements, got %d", doc.Count())
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.xml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrInvalidDocument) {
		t.Error("a read failure must not be reported as invalid XML")
	}
}
