package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func openSession(t *testing.T) *session {
	t.Helper()
	t.Setenv("ROWSET_LOG_LEVEL", "error")
	a := &app{dsn: ":memory:", query: "SELECT name, state, pop FROM cities"}
	a.initStmts = []string{seedArgs[3], seedArgs[5]}
	eng, err := a.open(context.Background())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	return &session{eng: eng}
}

func TestShellSession(t *testing.T) {
	s := openSession(t)
	var out bytes.Buffer

	steps := []string{"where state = 'NM'", "order pop", "fields name"}
	for _, step := range steps {
		out.Reset()
		if quit, err := s.eval(&out, step); err != nil || quit {
			t.Fatalf("%q: quit=%v err=%v", step, quit, err)
		}
	}
	if got := strings.TrimSpace(out.String()); got != "name\nTaos\nSanta Fe" {
		t.Fatalf("unexpected view %q", got)
	}

	out.Reset()
	if _, err := s.eval(&out, "count"); err != nil || strings.TrimSpace(out.String()) != "2" {
		t.Fatalf("count: %q %v", out.String(), err)
	}

	out.Reset()
	if _, err := s.eval(&out, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := s.eval(&out, "count"); err != nil || strings.TrimSpace(out.String()) != "4" {
		t.Fatalf("count after reset: %q %v", out.String(), err)
	}
}

func TestShellErrorsAndQuit(t *testing.T) {
	s := openSession(t)
	var out bytes.Buffer

	if _, err := s.eval(&out, "frobnicate"); err == nil {
		t.Fatalf("expected unknown command to fail")
	}
	if _, err := s.eval(&out, "where pop >"); err == nil {
		t.Fatalf("expected bad clause to fail")
	}
	out.Reset()
	if _, err := s.eval(&out, "count"); err != nil || strings.TrimSpace(out.String()) != "4" {
		t.Fatalf("expected bad clause to be discarded: %q %v", out.String(), err)
	}
	if quit, err := s.eval(&out, "  "); quit || err != nil {
		t.Fatalf("blank line: quit=%v err=%v", quit, err)
	}
	if quit, _ := s.eval(&out, "QUIT"); !quit {
		t.Fatalf("expected quit")
	}
}
