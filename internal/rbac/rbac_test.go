package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		state  State
		action Action
		allow  bool
	}{
		{name: "anonymous request link", state: StateUnauthenticated, action: ActionRequestLink, allow: true},
		{name: "anonymous verify link", state: StateUnauthenticated, action: ActionVerifyLink, allow: true},
		{name: "anonymous add category", state: StateUnauthenticated, action: ActionAddCategory, allow: false},
		{name: "anonymous list", state: StateUnauthenticated, action: ActionList, allow: false},
		{name: "anonymous add phrase", state: StateUnauthenticated, action: ActionAddPhrase, allow: false},
		{name: "anonymous emojify", state: StateUnauthenticated, action: ActionEmojify, allow: false},
		{name: "anonymous logout", state: StateUnauthenticated, action: ActionLogout, allow: false},
		{name: "signed in add category", state: StateAuthenticated, action: ActionAddCategory, allow: true},
		{name: "signed in list", state: StateAuthenticated, action: ActionList, allow: true},
		{name: "signed in add phrase", state: StateAuthenticated, action: ActionAddPhrase, allow: true},
		{name: "signed in emojify", state: StateAuthenticated, action: ActionEmojify, allow: true},
		{name: "signed in logout", state: StateAuthenticated, action: ActionLogout, allow: true},
		{name: "signed in unknown action", state: StateAuthenticated, action: Action("delete"), allow: false},
		{name: "unknown state", state: State("guest"), action: ActionRequestLink, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.state, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.state, tc.action, got, tc.allow)
			}
		})
	}
}

func TestFor(t *testing.T) {
	if got := For(""); got != StateUnauthenticated {
		t.Fatalf("For(\"\") = %q", got)
	}
	if got := For("usr_1"); got != StateAuthenticated {
		t.Fatalf("For(usr_1) = %q", got)
	}
}
