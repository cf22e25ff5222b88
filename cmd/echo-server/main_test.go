package main

import "testing"

func TestParseOverridesDefaultsLeaveConfigAlone(t *testing.T) {
	overrides, err := parseOverrides(nil)
	if err != nil {
		t.Fatalf("parseOverrides returned error: %v", err)
	}
	if overrides.Port != nil || overrides.MaxBodyBytes != nil || overrides.RateLimitRPS != nil || overrides.RateLimitBurst != nil {
		t.Fatalf("expected no overrides, got %+v", overrides)
	}
}

func TestParseOverridesAppliesFlags(t *testing.T) {
	overrides, err := parseOverrides([]string{
		"--config", "echo.yaml",
		"--port", "9001",
		"--max-body-bytes", "2048",
		"--rate-limit-rps", "0",
		"--rate-limit-burst", "5",
	})
	if err != nil {
		t.Fatalf("parseOverrides returned error: %v", err)
	}

	if overrides.ConfigFile != "echo.yaml" {
		t.Fatalf("unexpected config file %q", overrides.ConfigFile)
	}
	if overrides.Port == nil || *overrides.Port != "9001" {
		t.Fatalf("expected port override")
	}
	if overrides.MaxBodyBytes == nil || *overrides.MaxBodyBytes != 2048 {
		t.Fatalf("expected body limit override")
	}
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("expected explicit zero RPS to disable rate limiting")
	}
	if overrides.RateLimitBurst == nil || *overrides.RateLimitBurst != 5 {
		t.Fatalf("expected burst override")
	}
}

func TestParseOverridesRejectsBadValues(t *testing.T) {
	if _, err := parseOverrides([]string{"--max-body-bytes", "lots"}); err == nil {
		t.Fatalf("expected error for non-numeric body limit")
	}
}
