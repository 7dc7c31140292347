package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action identifies what an inline button asks the bot to do. Callback
// data is decoded into a Command once, at the edge; handlers never parse
// raw strings themselves.
type Action string

const (
	ActionSendFree    Action = "send_free"
	ActionSend35      Action = "send_35"
	ActionSend50      Action = "send_50"
	ActionHelp        Action = "help"
	ActionBackToMenu  Action = "back_to_menu"
	ActionCancel      Action = "cancel_action"
	ActionPayStars    Action = "pay_stars"
	ActionPayCard     Action = "pay_stripe"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionEdit        Action = "edit"
	ActionApproveAll  Action = "approve_all"
	ActionUserInfo    Action = "user_info"
	ActionBanUser     Action = "ban_user"
	ActionUnbanUser   Action = "unban_user"
	ActionJoinAccept  Action = "join_accept"
	ActionJoinDecline Action = "join_decline"
)

// Command is a decoded callback: the action plus its numeric argument,
// when the action carries one (post id, user id, request id or amount).
type Command struct {
	Action Action
	Arg    int64
}

var ErrUnknownCallback = errors.New("unknown callback data")

// bare callbacks carry no argument.
var bareActions = map[string]Action{
	"send_free":     ActionSendFree,
	"send_35":       ActionSend35,
	"send_50":       ActionSend50,
	"help":          ActionHelp,
	"back_to_menu":  ActionBackToMenu,
	"cancel_action": ActionCancel,
	"approve_all":   ActionApproveAll,
}

// prefixed callbacks end with a numeric argument; longer prefixes are
// listed first so ban_user_ never matches as unban_user_'s suffix.
var prefixedActions = []struct {
	prefix string
	action Action
}{
	{"pay_stars_", ActionPayStars},
	{"pay_stripe_", ActionPayCard},
	{"approve_", ActionApprove},
	{"reject_", ActionReject},
	{"edit_", ActionEdit},
	{"user_info_", ActionUserInfo},
	{"unban_user_", ActionUnbanUser},
	{"ban_user_", ActionBanUser},
	{"join_accept_", ActionJoinAccept},
	{"join_decline_", ActionJoinDecline},
}

// DecodeCallback parses raw callback data into a Command.
func DecodeCallback(data string) (Command, error) {
	if action, ok := bareActions[data]; ok {
		return Command{Action: action}, nil
	}
	for _, candidate := range prefixedActions {
		if !strings.HasPrefix(data, candidate.prefix) {
			continue
		}
		arg, err := strconv.ParseInt(strings.TrimPrefix(data, candidate.prefix), 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
		}
		return Command{Action: candidate.action, Arg: arg}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}

// EncodeCallback renders a Command back into button callback data.
func EncodeCallback(cmd Command) string {
	if _, ok := bareActions[string(cmd.Action)]; ok {
		return string(cmd.Action)
	}
	return fmt.Sprintf("%s_%d", cmd.Action, cmd.Arg)
}
