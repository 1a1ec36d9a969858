package model

import "testing"

func TestStatusNextCycles(t *testing.T) {
	cases := []struct {
		in   Status
		want Status
	}{
		{StatusTodo, StatusWip},
		{StatusWip, StatusDone},
		{StatusDone, StatusTodo},
	}
	for _, c := range cases {
		if got := c.in.Next(); got != c.want {
			t.Errorf("%s.Next() = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusTodo, StatusWip, StatusDone} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("admin") != RoleAdmin {
		t.Error(`ParseRole("admin") should be RoleAdmin`)
	}
	if ParseRole("user") != RoleUser {
		t.Error(`ParseRole("user") should be RoleUser`)
	}
	if ParseRole("gibberish") != RoleUser {
		t.Error("unknown roles should default to RoleUser")
	}
}
