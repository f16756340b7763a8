package models

import (
	"encoding/json"
	"testing"
)

func TestStringList(t *testing.T) {
	var l StringList
	if err := json.Unmarshal([]byte(`"rock"`), &l); err != nil {
		t.Fatalf("scalar decode failed: %v", err)
	}
	if len(l) != 1 || l[0] != "rock" {
		t.Fatalf("unexpected scalar result %v", l)
	}

	if err := json.Unmarshal([]byte(`["rock","jam"]`), &l); err != nil {
		t.Fatalf("list decode failed: %v", err)
	}
	if len(l) != 2 || l[1] != "jam" {
		t.Fatalf("unexpected list result %v", l)
	}

	if err := json.Unmarshal([]byte(`null`), &l); err != nil {
		t.Fatalf("null decode failed: %v", err)
	}
	if l != nil {
		t.Fatalf("expected nil for null, got %v", l)
	}
}

func TestRegionText(t *testing.T) {
	var r RegionText
	if err := json.Unmarshal([]byte(`"CA"`), &r); err != nil {
		t.Fatalf("string decode failed: %v", err)
	}
	if r != "CA" {
		t.Fatalf("unexpected string result %q", r)
	}

	if err := json.Unmarshal([]byte(`{"@type":"State","name":"California"}`), &r); err != nil {
		t.Fatalf("object decode failed: %v", err)
	}
	if r != "California" {
		t.Fatalf("unexpected object result %q", r)
	}

	if err := json.Unmarshal([]byte(`null`), &r); err != nil {
		t.Fatalf("null decode failed: %v", err)
	}
	if r != "" {
		t.Fatalf("expected empty for null, got %q", r)
	}
}

func TestImageRef(t *testing.T) {
	var r ImageRef
	if err := json.Unmarshal([]byte(`"https://cdn.example.com/a.jpg"`), &r); err != nil {
		t.Fatalf("string decode failed: %v", err)
	}
	if r != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected string result %q", r)
	}

	if err := json.Unmarshal([]byte(`{"url":"https://cdn.example.com/b.jpg"}`), &r); err != nil {
		t.Fatalf("object decode failed: %v", err)
	}
	if r != "https://cdn.example.com/b.jpg" {
		t.Fatalf("unexpected object result %q", r)
	}
}

func TestImageList(t *testing.T) {
	var l ImageList
	data := `["https://cdn.example.com/a.jpg",{"url":"https://cdn.example.com/b.jpg","caption":"Stage"}]`
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		t.Fatalf("list decode failed: %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("expected 2 images, got %d", len(l))
	}
	if l[0].URL != "https://cdn.example.com/a.jpg" || l[0].Caption != nil {
		t.Fatalf("unexpected first image %+v", l[0])
	}
	if l[1].URL != "https://cdn.example.com/b.jpg" {
		t.Fatalf("unexpected second image %+v", l[1])
	}
	if l[1].Caption == nil || *l[1].Caption != "Stage" {
		t.Fatalf("unexpected caption %+v", l[1].Caption)
	}

	// Scalar image fields decode to no descriptors.
	if err := json.Unmarshal([]byte(`"https://cdn.example.com/a.jpg"`), &l); err != nil {
		t.Fatalf("scalar decode failed: %v", err)
	}
	if l != nil {
		t.Fatalf("expected nil for scalar, got %v", l)
	}
}

func TestFlexFloat(t *testing.T) {
	var f FlexFloat
	if err := json.Unmarshal([]byte(`42.5`), &f); err != nil {
		t.Fatalf("number decode failed: %v", err)
	}
	if !f.OK || f.Value != 42.5 {
		t.Fatalf("unexpected number result %+v", f)
	}

	f = FlexFloat{}
	if err := json.Unmarshal([]byte(`"19.99"`), &f); err != nil {
		t.Fatalf("string decode failed: %v", err)
	}
	if !f.OK || f.Value != 19.99 {
		t.Fatalf("unexpected string result %+v", f)
	}

	f = FlexFloat{}
	if err := json.Unmarshal([]byte(`null`), &f); err != nil {
		t.Fatalf("null decode failed: %v", err)
	}
	if f.OK {
		t.Fatalf("expected absent for null, got %+v", f)
	}

	f = FlexFloat{}
	if err := json.Unmarshal([]byte(`"n/a"`), &f); err != nil {
		t.Fatalf("unparseable string should not error: %v", err)
	}
	if f.OK {
		t.Fatalf("expected absent for unparseable string, got %+v", f)
	}

	if f.Ptr() != nil || f.IntPtr() != nil {
		t.Fatal("expected nil pointers for absent value")
	}
	f = FlexFloat{Value: 19.7, OK: true}
	if p := f.Ptr(); p == nil || *p != 19.7 {
		t.Fatalf("unexpected Ptr %v", p)
	}
	if p := f.IntPtr(); p == nil || *p != 19 {
		t.Fatalf("unexpected IntPtr %v", p)
	}
}

func TestRawPerformerKeepsVerbatimBytes(t *testing.T) {
	data := []byte(`{"identifier":"jambase:101","name":"Phish","genre":"rock","x-isHeadliner":true}`)
	var p RawPerformer
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.Identifier != "jambase:101" || !p.IsHeadliner {
		t.Fatalf("unexpected performer %+v", p)
	}
	if string(p.Raw) != string(data) {
		t.Fatalf("expected verbatim bytes, got %s", p.Raw)
	}
}

func TestRawAddressKeepsVerbatimBytes(t *testing.T) {
	data := []byte(`{"streetAddress":"4 Pennsylvania Plaza","addressRegion":{"name":"NY"}}`)
	var a RawAddress
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if a.StreetAddress != "4 Pennsylvania Plaza" || a.AddressRegion != "NY" {
		t.Fatalf("unexpected address %+v", a)
	}
	if string(a.Raw) != string(data) {
		t.Fatalf("expected verbatim bytes, got %s", a.Raw)
	}
}
