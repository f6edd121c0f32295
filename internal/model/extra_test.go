// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"testing"
)

func TestExtraQuotaJSON(t *testing.T) {
	limited := Extra{
		ID:          1,
		Name:        "Chess Club",
		Quota:       sql.NullInt64{Int64: 20, Valid: true},
		MemberCount: 5,
	}
	b, err := json.Marshal(limited)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["quota"] != float64(20) {
		t.Errorf("quota = %v, want 20", got["quota"])
	}
	if got["member_count"] != float64(5) {
		t.Errorf("member_count = %v, want 5", got["member_count"])
	}

	unlimited := Extra{ID: 2, Name: "Choir"}
	b, err = json.Marshal(unlimited)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	v, ok := got["quota"]
	if !ok {
		t.Fatal("quota field missing for unlimited club")
	}
	if v != nil {
		t.Errorf("quota = %v, want null for unlimited club", v)
	}
}

func TestExtraIsFull(t *testing.T) {
	tests := []struct {
		name  string
		extra Extra
		want  bool
	}{
		{"unlimited", Extra{MemberCount: 100}, false},
		{"below quota", Extra{Quota: sql.NullInt64{Int64: 20, Valid: true}, MemberCount: 19}, false},
		{"at quota", Extra{Quota: sql.NullInt64{Int64: 20, Valid: true}, MemberCount: 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.extra.IsFull(); got != tt.want {
				t.Errorf("IsFull() = %v, want %v", got, tt.want)
			}
		})
	}
}
