// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"staff name", "Jane Doe", "jane-doe"},
		{"accents", "École Élémentaire", "ecole-elementaire"},
		{"cyrillic", "Школа", "shkola"},
		{"punctuation", "Sports Day: 2026!", "sports-day-2026"},
		{"multiple spaces", "a   b", "a-b"},
		{"leading trailing", " -trimmed- ", "trimmed"},
		{"already slug", "already-a-slug", "already-a-slug"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugWithSuffix(t *testing.T) {
	if got := SlugWithSuffix("jane-doe", 2); got != "jane-doe-2" {
		t.Errorf("SlugWithSuffix = %q, want %q", got, "jane-doe-2")
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"a", "abc-123", "jane-doe"}
	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "Upper", "spa ce"}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}
