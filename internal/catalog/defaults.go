package catalog

import "github.com/kinshiphq/kinship/pkg/types"

// symmetric builds a symmetric reverse rule.
func symmetric(key string) Reverse {
	return Reverse{Kind: ReverseSymmetric, Key: key}
}

// gendered builds a gendered reverse rule with a neutral fallback.
func gendered(male, female, fallback string) Reverse {
	return Reverse{
		Kind: ReverseGendered,
		ByGender: map[types.Gender]string{
			types.GenderMale:   male,
			types.GenderFemale: female,
		},
		Fallback: fallback,
	}
}

// defaultEntries is the built-in relationship type catalog. The type key is
// read as "A is <key> of B"; the reverse rule derives B's role toward A,
// gendered by the gender of the contact the reverse edge describes.
var defaultEntries = []RelationshipType{
	// Family
	{Key: types.RelParent, Category: types.CategoryFamily, DisplayName: "Parent",
		Reverse: gendered(types.RelSon, types.RelDaughter, types.RelChild)},
	{Key: types.RelChild, Category: types.CategoryFamily, DisplayName: "Child",
		Reverse: gendered(types.RelFather, types.RelMother, types.RelParent)},
	{Key: types.RelFather, Category: types.CategoryFamily, DisplayName: "Father",
		Reverse: gendered(types.RelSon, types.RelDaughter, types.RelChild)},
	{Key: types.RelMother, Category: types.CategoryFamily, DisplayName: "Mother",
		Reverse: gendered(types.RelSon, types.RelDaughter, types.RelChild)},
	{Key: types.RelSon, Category: types.CategoryFamily, DisplayName: "Son",
		Reverse: gendered(types.RelFather, types.RelMother, types.RelParent)},
	{Key: types.RelDaughter, Category: types.CategoryFamily, DisplayName: "Daughter",
		Reverse: gendered(types.RelFather, types.RelMother, types.RelParent)},
	{Key: types.RelSibling, Category: types.CategoryFamily, DisplayName: "Sibling",
		Reverse: gendered(types.RelBrother, types.RelSister, types.RelSibling)},
	{Key: types.RelBrother, Category: types.CategoryFamily, DisplayName: "Brother",
		Reverse: gendered(types.RelBrother, types.RelSister, types.RelSibling)},
	{Key: types.RelSister, Category: types.CategoryFamily, DisplayName: "Sister",
		Reverse: gendered(types.RelBrother, types.RelSister, types.RelSibling)},
	{Key: types.RelGrandparent, Category: types.CategoryFamily, DisplayName: "Grandparent",
		Reverse: gendered(types.RelGrandson, types.RelGranddaughter, types.RelGrandchild)},
	{Key: types.RelGrandchild, Category: types.CategoryFamily, DisplayName: "Grandchild",
		Reverse: symmetric(types.RelGrandparent)},
	{Key: types.RelGrandson, Category: types.CategoryFamily, DisplayName: "Grandson",
		Reverse: symmetric(types.RelGrandparent)},
	{Key: types.RelGranddaughter, Category: types.CategoryFamily, DisplayName: "Granddaughter",
		Reverse: symmetric(types.RelGrandparent)},
	{Key: types.RelUncle, Category: types.CategoryFamily, DisplayName: "Uncle",
		Reverse: gendered(types.RelNephew, types.RelNiece, types.RelNephew)},
	{Key: types.RelAunt, Category: types.CategoryFamily, DisplayName: "Aunt",
		Reverse: gendered(types.RelNephew, types.RelNiece, types.RelNephew)},
	{Key: types.RelNephew, Category: types.CategoryFamily, DisplayName: "Nephew",
		Reverse: gendered(types.RelUncle, types.RelAunt, types.RelUncle)},
	{Key: types.RelNiece, Category: types.CategoryFamily, DisplayName: "Niece",
		Reverse: gendered(types.RelUncle, types.RelAunt, types.RelUncle)},
	{Key: types.RelCousin, Category: types.CategoryFamily, DisplayName: "Cousin",
		Reverse: symmetric(types.RelCousin)},

	// Professional
	{Key: types.RelManager, Category: types.CategoryProfessional, DisplayName: "Manager",
		Reverse: symmetric(types.RelEmployee)},
	{Key: types.RelEmployee, Category: types.CategoryProfessional, DisplayName: "Employee",
		Reverse: symmetric(types.RelManager)},
	{Key: types.RelColleague, Category: types.CategoryProfessional, DisplayName: "Colleague",
		Reverse: symmetric(types.RelColleague)},
	{Key: types.RelClient, Category: types.CategoryProfessional, DisplayName: "Client",
		Reverse: symmetric(types.RelServiceProvider)},
	{Key: types.RelServiceProvider, Category: types.CategoryProfessional, DisplayName: "Service Provider",
		Reverse: symmetric(types.RelClient)},
	{Key: types.RelMentor, Category: types.CategoryProfessional, DisplayName: "Mentor",
		Reverse: symmetric(types.RelMentee)},
	{Key: types.RelMentee, Category: types.CategoryProfessional, DisplayName: "Mentee",
		Reverse: symmetric(types.RelMentor)},
	{Key: types.RelBusinessPartner, Category: types.CategoryProfessional, DisplayName: "Business Partner",
		Reverse: symmetric(types.RelBusinessPartner)},

	// Social
	{Key: types.RelFriend, Category: types.CategorySocial, DisplayName: "Friend",
		Reverse: symmetric(types.RelFriend)},
	{Key: types.RelCloseFriend, Category: types.CategorySocial, DisplayName: "Close Friend",
		Reverse: symmetric(types.RelCloseFriend)},
	{Key: types.RelAcquaintance, Category: types.CategorySocial, DisplayName: "Acquaintance",
		Reverse: symmetric(types.RelAcquaintance)},
	{Key: types.RelNeighbor, Category: types.CategorySocial, DisplayName: "Neighbor",
		Reverse: symmetric(types.RelNeighbor)},
	{Key: types.RelRoommate, Category: types.CategorySocial, DisplayName: "Roommate",
		Reverse: symmetric(types.RelRoommate)},

	// Romantic
	{Key: types.RelSpouse, Category: types.CategoryRomantic, DisplayName: "Spouse",
		Reverse: symmetric(types.RelSpouse)},
	{Key: types.RelPartner, Category: types.CategoryRomantic, DisplayName: "Partner",
		Reverse: symmetric(types.RelPartner)},
	{Key: types.RelEx, Category: types.CategoryRomantic, DisplayName: "Ex-Partner",
		Reverse: symmetric(types.RelEx)},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		// The built-in table is validated by tests; a bad entry here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return c
}
