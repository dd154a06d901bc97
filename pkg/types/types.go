// Package types defines the core data structures for the Kinship relationship
// graph: contacts, typed relationship edges, and the constant taxonomies
// (categories, statuses, genders) shared by every other package.
package types

// Category classifies a relationship type.
type Category string

// Relationship categories.
const (
	CategoryFamily       Category = "family"
	CategoryProfessional Category = "professional"
	CategorySocial       Category = "social"
	CategoryRomantic     Category = "romantic"
)

// Categories lists all categories in declaration order. Analytics uses this
// order to break ties, so it must stay stable.
var Categories = []Category{
	CategoryFamily,
	CategoryProfessional,
	CategorySocial,
	CategoryRomantic,
}

// IsValidCategory checks if the given category is one of the four known ones.
func IsValidCategory(c Category) bool {
	for _, valid := range Categories {
		if valid == c {
			return true
		}
	}
	return false
}

// Status represents the lifecycle status of a relationship.
type Status string

// Relationship statuses.
const (
	StatusActive  Status = "active"
	StatusDistant Status = "distant"
	StatusEnded   Status = "ended"
)

// ValidStatuses lists all valid relationship statuses.
var ValidStatuses = []Status{StatusActive, StatusDistant, StatusEnded}

// IsValidStatus checks if the given status is valid.
func IsValidStatus(s Status) bool {
	for _, valid := range ValidStatuses {
		if valid == s {
			return true
		}
	}
	return false
}

// Gender is an optional contact attribute used only for reverse relationship
// type resolution (e.g. "parent" reversing to "son" or "daughter").
type Gender string

// Genders. GenderUnknown is the zero value and means unset.
const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// IsValidGender checks if the given gender is unset or one of the known values.
func IsValidGender(g Gender) bool {
	return g == GenderUnknown || g == GenderMale || g == GenderFemale
}

// Relationship type keys for the built-in catalog.
// Family types.
const (
	RelParent        = "parent"
	RelChild         = "child"
	RelFather        = "father"
	RelMother        = "mother"
	RelSon           = "son"
	RelDaughter      = "daughter"
	RelSibling       = "sibling"
	RelBrother       = "brother"
	RelSister        = "sister"
	RelGrandparent   = "grandparent"
	RelGrandchild    = "grandchild"
	RelGrandson      = "grandson"
	RelGranddaughter = "granddaughter"
	RelUncle         = "uncle"
	RelAunt          = "aunt"
	RelNephew        = "nephew"
	RelNiece         = "niece"
	RelCousin        = "cousin"
)

// Professional types.
const (
	RelManager         = "manager"
	RelEmployee        = "employee"
	RelColleague       = "colleague"
	RelClient          = "client"
	RelServiceProvider = "service_provider"
	RelMentor          = "mentor"
	RelMentee          = "mentee"
	RelBusinessPartner = "business_partner"
)

// Social types.
const (
	RelFriend       = "friend"
	RelCloseFriend  = "close_friend"
	RelAcquaintance = "acquaintance"
	RelNeighbor     = "neighbor"
	RelRoommate     = "roommate"
)

// Romantic types.
const (
	RelSpouse  = "spouse"
	RelPartner = "partner"
	RelEx      = "ex_partner"
)

// StrengthMin and StrengthMax bound the relationship strength scale.
// A strength of 0 means unset; analytics substitutes StrengthDefault
// when averaging but never writes it back.
const (
	StrengthMin     = 1
	StrengthMax     = 10
	StrengthDefault = 5
)

// IsValidStrength reports whether s is inside the [1,10] scale.
// Zero (unset) is not a valid explicit strength.
func IsValidStrength(s int) bool {
	return s >= StrengthMin && s <= StrengthMax
}
