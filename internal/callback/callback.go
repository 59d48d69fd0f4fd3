// Package callback implements the compact token grammar carried in
// inline-keyboard button payloads: `action:arg:arg:...`. Arguments are
// percent-encoded by the producer and decoded by the parser, since
// values such as email addresses may contain the delimiter itself.
// Telegram caps callback payloads at 64 bytes, which is why action
// names are short and free-form arguments are always encoded.
package callback

import (
	"fmt"
	"net/url"
	"strings"
)

// Action identifies a button handler in the dispatch table
type Action string

const (
	ActionMainMenu Action = "menu"

	// address creation
	ActionCreatePrompt  Action = "new"
	ActionCreateRandom  Action = "rnd"
	ActionCreateConfirm Action = "mk" // args: local part

	// inbox navigation
	ActionEmailList  Action = "emails"
	ActionInbox      Action = "inbox" // args: address, page
	ActionMessage    Action = "msg"   // args: address, global index, page
	ActionToggleRead Action = "rd"    // args: address, global index, page
	ActionCopyCode   Action = "code"  // args: address, global index, code index

	// deletion
	ActionDeleteMessage    Action = "dm"  // args: address, global index, page
	ActionDeleteMessageYes Action = "dmy" // args: address, global index, page
	ActionDeleteMailbox    Action = "db"  // args: address, page
	ActionDeleteMailboxYes Action = "dby" // args: address

	// forwarding
	ActionForward      Action = "fwd"
	ActionForwardClear Action = "fwdclr"

	// admin
	ActionAdminPanel     Action = "adm"
	ActionAdminStats     Action = "stats"
	ActionAdminBroadcast Action = "bc"
	ActionBroadcastYes   Action = "bcy" // args: draft id
	ActionBroadcastNo    Action = "bcn" // args: draft id
	ActionAdminFind      Action = "find"
	ActionAdminBan       Action = "ban"   // args: chat id
	ActionAdminUnban     Action = "unban" // args: chat id
	ActionAdminCleanup   Action = "clean"
	ActionAdminWelcome   Action = "welcome"
)

// Encode builds a callback token from an action and its arguments
func Encode(action Action, args ...string) string {
	if len(args) == 0 {
		return string(action)
	}

	var sb strings.Builder
	sb.WriteString(string(action))
	for _, arg := range args {
		sb.WriteByte(':')
		sb.WriteString(url.QueryEscape(arg))
	}
	return sb.String()
}

// Decode parses a callback token back into its action and decoded
// argument list. The action is matched verbatim by the caller; a
// malformed percent-encoding in any argument fails the whole token.
func Decode(token string) (Action, []string, error) {
	parts := strings.Split(token, ":")
	action := Action(parts[0])
	if action == "" {
		return "", nil, fmt.Errorf("empty callback action in %q", token)
	}

	args := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		arg, err := url.QueryUnescape(part)
		if err != nil {
			return "", nil, fmt.Errorf("malformed callback argument %q: %w", part, err)
		}
		args = append(args, arg)
	}
	return action, args, nil
}
