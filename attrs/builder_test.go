// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package attrs

import "testing"

func TestBuilderPerCallWinsOverAmbient(t *testing.T) {
	b := NewBuilder()
	b.SetAmbient(Context{
		Subject: SubjectContext{UserID: "ambient-user", Attributes: map[string]any{"dept": "eng"}},
		Action:  "view",
	})

	merged := b.Build(Context{
		Subject: SubjectContext{UserID: "bob", Attributes: map[string]any{"dept": "sales"}},
	})

	if merged.Subject.UserID != "bob" {
		t.Fatalf("expected per-call user id to win, got %q", merged.Subject.UserID)
	}
	if merged.Subject.Attributes["dept"] != "sales" {
		t.Fatalf("expected per-call attribute to win, got %v", merged.Subject.Attributes["dept"])
	}
	if merged.Action != "view" {
		t.Fatalf("expected ambient action to fill gap, got %q", merged.Action)
	}
}

func TestBuilderDeepMergesAttributes(t *testing.T) {
	b := NewBuilder()
	b.SetAmbient(Context{Subject: SubjectContext{Attributes: map[string]any{"dept": "eng", "region": "us"}}})

	merged := b.Build(Context{Subject: SubjectContext{Attributes: map[string]any{"dept": "sales"}}})

	if merged.Subject.Attributes["dept"] != "sales" {
		t.Fatalf("override attribute lost: %v", merged.Subject.Attributes)
	}
	if merged.Subject.Attributes["region"] != "us" {
		t.Fatalf("ambient attribute not merged in: %v", merged.Subject.Attributes)
	}
}

func TestToMapDefaultsTimestamp(t *testing.T) {
	c := Context{Subject: SubjectContext{UserID: "bob"}}
	m := c.ToMap()
	env := m["environment"].(map[string]any)
	if env["timestamp"] == nil {
		t.Fatal("expected a default timestamp")
	}
}

func TestMatcher(t *testing.T) {
	m := NewMatcher()
	if !m.Match("name", "Bob", "Bob") {
		t.Fatal("expected exact match")
	}
	if m.Match("name", "Bob", "bob") {
		t.Fatal("expected case-sensitive mismatch")
	}

	m.CaseInsensitive = true
	if !m.Match("name", "Bob", "bob") {
		t.Fatal("expected case-insensitive match")
	}

	m.PartialString = true
	if !m.Match("name", "Bobby", "bob") {
		t.Fatal("expected partial match")
	}

	m.RegisterCustomMatcher("age", func(actual, expected any) bool {
		a, _ := actual.(int)
		e, _ := expected.(int)
		return a >= e
	})
	if !m.Match("age", 30, 18) {
		t.Fatal("expected custom matcher to win")
	}
}
