package core

// Operation is a raw ledger operation: its type name and the untyped payload
// exactly as decoded from a block.
type Operation struct {
	Type string
	Data map[string]any
}

// accountFields maps an operation type to the payload fields that hold
// account names. Every operation feeds the ledger through this table.
var accountFields = map[string][]string{
	"comment":                        {"author", "parent_author"},
	"vote":                           {"voter", "author"},
	"delegate_vesting_shares":        {"delegator", "delegatee"},
	"escrow_release":                 {"from", "to", "agent", "who", "receiver"},
	"escrow_approve":                 {"from", "to", "agent", "who"},
	"escrow_dispute":                 {"from", "to", "agent", "who"},
	"escrow_transfer":                {"from", "to", "agent"},
	"fill_transfer_from_savings":     {"from", "to"},
	"transfer":                       {"from", "to"},
	"transfer_to_vesting":            {"from", "to"},
	"transfer_to_savings":            {"from", "to"},
	"transfer_from_savings":          {"from", "to"},
	"fill_vesting_withdraw":          {"from_account", "to_account"},
	"set_withdraw_vesting_route":     {"from_account", "to_account"},
	"fill_order":                     {"current_owner", "open_owner"},
	"request_account_recovery":       {"recovery_account", "account_to_recover"},
	"change_recovery_account":        {"account_to_recover", "new_recovery_account"},
	"account_create":                 {"creator", "new_account_name"},
	"account_create_with_delegation": {"creator", "new_account_name"},
	"account_witness_vote":           {"account", "witness"},
	"account_witness_proxy":          {"account", "proxy"},
	"account_update":                 {"account"},
	"claim_reward_balance":           {"account"},
	"decline_voting_rights":          {"account"},
	"return_vesting_delegation":      {"account"},
	"withdraw_vesting":               {"account"},
	"convert":                        {"owner"},
	"fill_convert_request":           {"owner"},
	"interest":                       {"owner"},
	"limit_order_create":             {"owner"},
	"limit_order_create2":            {"owner"},
	"limit_order_cancel":             {"owner"},
	"liquidity_reward":               {"owner"},
	"shutdown_witness":               {"owner"},
	"witness_update":                 {"owner"},
	"author_reward":                  {"author"},
	"comment_options":                {"author"},
	"comment_payout_update":          {"author"},
	"comment_reward":                 {"author"},
	"delete_comment":                 {"author"},
	"curation_reward":                {"curator", "comment_author"},
	"feed_publish":                   {"publisher"},
	"recover_account":                {"account_to_recover"},
	"cancel_transfer_from_savings":   {"from"},
	"comment_benefactor_reward":      {"benefactor", "author"},
	"producer_reward":                {"producer"},
	"prove_authority":                {"challenged"},
}

func (o Operation) str(field string) string {
	s, _ := o.Data[field].(string)
	return s
}

func (o Operation) num(field string) int {
	switch v := o.Data[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Accounts returns every account name the operation references.
func (o Operation) Accounts() []string {
	fields, ok := accountFields[o.Type]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		if name := o.str(field); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// AsComment decodes a comment operation payload.
func (o Operation) AsComment() (Comment, bool) {
	if o.Type != "comment" {
		return Comment{}, false
	}
	return Comment{
		Author:         o.str("author"),
		Permlink:       o.str("permlink"),
		ParentAuthor:   o.str("parent_author"),
		ParentPermlink: o.str("parent_permlink"),
		Title:          o.str("title"),
		Body:           o.str("body"),
		JSONMetadata:   o.str("json_metadata"),
	}, true
}

// AsVote decodes a vote operation payload.
func (o Operation) AsVote() (Vote, bool) {
	if o.Type != "vote" {
		return Vote{}, false
	}
	return Vote{
		Voter:    o.str("voter"),
		Author:   o.str("author"),
		Permlink: o.str("permlink"),
		Weight:   o.num("weight"),
	}, true
}
