// Package rbac decides which actions a session state may perform.
package rbac

type State string
type Action string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

const (
	ActionRequestLink Action = "request_link"
	ActionVerifyLink  Action = "verify_link"
	ActionLogout      Action = "logout"
	ActionAddCategory Action = "add_category"
	ActionList        Action = "list"
	ActionAddPhrase   Action = "add_phrase"
	ActionEmojify     Action = "emojify"
)

func Can(state State, action Action) bool {
	switch state {
	case StateAuthenticated:
		switch action {
		case ActionRequestLink, ActionVerifyLink, ActionLogout,
			ActionAddCategory, ActionList, ActionAddPhrase, ActionEmojify:
			return true
		}
		return false
	case StateUnauthenticated:
		return action == ActionRequestLink || action == ActionVerifyLink
	default:
		return false
	}
}

// For returns the state of a request that resolved userID. An empty id is unauthenticated.
func For(userID string) State {
	if userID == "" {
		return StateUnauthenticated
	}
	return StateAuthenticated
}
