package authz

import (
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// Action represents an operation a principal may perform on a resource
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Principal is the authenticated caller extracted from the bearer token
type Principal struct {
	Subject  string
	Username string
	Groups   []string
}

// InGroup reports whether the principal belongs to the given group
func (p *Principal) InGroup(group string) bool {
	for _, g := range p.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal belongs to the admin group
func (p *Principal) IsAdmin() bool {
	return p.InGroup(entities.GroupAdmins)
}

// Rule grants a set of actions either to the resource owner or to named groups.
// Exactly one of Owner/Groups is meaningful per rule.
type Rule struct {
	Owner   bool
	Groups  []string
	Actions []Action
}

// OwnerRule grants actions to the owner of the resource
func OwnerRule(actions ...Action) Rule {
	return Rule{Owner: true, Actions: actions}
}

// GroupRule grants actions to members of the named groups
func GroupRule(groups []string, actions ...Action) Rule {
	return Rule{Groups: groups, Actions: actions}
}

func (r Rule) allows(action Action) bool {
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Policy is an ordered rule set for one resource type
type Policy struct {
	Rules []Rule
}

// Allows evaluates the policy for a principal acting on a resource owned by
// ownerID (matched against the principal's subject and directory record ID).
func (p Policy) Allows(principal *Principal, action Action, ownerID string) bool {
	if principal == nil {
		return false
	}
	for _, rule := range p.Rules {
		if !rule.allows(action) {
			continue
		}
		if rule.Owner {
			if ownerID != "" && (principal.Subject == ownerID || ownerMatches(principal, ownerID)) {
				return true
			}
			continue
		}
		for _, group := range rule.Groups {
			if principal.InGroup(group) {
				return true
			}
		}
	}
	return false
}

// ownerMatches handles owner IDs stored as composite owner keys
func ownerMatches(principal *Principal, ownerID string) bool {
	username, subject, ok := entities.ParseOwnerKey(ownerID)
	if !ok {
		return false
	}
	return subject == principal.Subject && username == principal.Username
}

// Per-model policies, mirroring the declarative rules the data layer used to
// carry: owner-based access plus a group overlay.
var (
	// UserPolicy: self-managed limited fields, admins full access
	UserPolicy = Policy{Rules: []Rule{
		OwnerRule(ActionRead, ActionUpdate),
		GroupRule([]string{entities.GroupAdmins}, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
	}}

	// BusinessPolicy: owners manage their own listings, admins have full
	// access, and members of the owners group may create new listings
	BusinessPolicy = Policy{Rules: []Rule{
		OwnerRule(ActionCreate, ActionUpdate, ActionDelete),
		GroupRule([]string{entities.GroupAdmins}, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		GroupRule([]string{entities.GroupOwners}, ActionCreate, ActionRead),
	}}

	// ReviewPolicy: authors manage their own reviews, admins full access
	ReviewPolicy = Policy{Rules: []Rule{
		OwnerRule(ActionCreate, ActionUpdate, ActionDelete),
		GroupRule([]string{entities.GroupAdmins}, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
	}}

	// SubscriptionPolicy: users manage their own subscriptions, admins full access
	SubscriptionPolicy = Policy{Rules: []Rule{
		OwnerRule(ActionCreate, ActionDelete),
		GroupRule([]string{entities.GroupAdmins}, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
	}}

	// PostPolicy: authors manage their own posts, admins full access
	PostPolicy = Policy{Rules: []Rule{
		OwnerRule(ActionCreate, ActionUpdate, ActionDelete),
		GroupRule([]string{entities.GroupAdmins}, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
	}}
)

// CanSetBusinessStatus reports whether the principal may set or change the
// moderation status on a business. Owner-created listings always start in
// PENDING_REVIEW; only admins move them from there.
func CanSetBusinessStatus(principal *Principal) bool {
	return principal != nil && principal.IsAdmin()
}
