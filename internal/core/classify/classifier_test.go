package classify

import "testing"

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name     string
		surname  string
		given    string
		accepted bool
		rule     Rule
	}{
		{"person", "MARTIN", "Jean", true, RulePerson},
		{"terrain compound", "MONT DE NOIX", "", false, RulePlaceLike},
		{"empty", "", "Jean", false, RuleParasitic},
		{"parasitic token", "Lieu-dit", "", false, RuleParasitic},
		{"article prefix", "LES GRANDS CHAMPS", "", false, RuleParasitic},
		{"commune entity", "COMMUNE DE BESANCON", "", true, RuleLegalEntity},
		{"sci entity", "SCI DU MOULIN", "", true, RuleLegalEntity},
		{"short entity", "SCI", "", false, RuleDefault},
		{"roadway", "12 RUE DES LILAS", "", false, RulePlaceLike},
		{"accented terrain", "CÔTE ROUGE", "", false, RulePlaceLike},
		{"leading preposition", "SOUS ROCHEFORT", "", false, RulePlaceLike},
		{"bare surname", "BERTHOLET", "", true, RuleBareSurname},
		{"bare surname too short", "DUPO", "", false, RuleDefault},
		{"bare surname with digits", "DURAND2", "", false, RuleDefault},
		{"short surname with given", "LEE", "Anna", true, RulePerson},
		{"connector", "MACDONALD", "J", true, RuleConnector},
		{"no rule", "BLANC", "J", false, RuleDefault},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := Evaluate(c.surname, c.given)
			if v.Accepted != c.accepted || v.Rule != c.rule {
				t.Fatalf("Evaluate(%q,%q) = %+v, want accepted=%v rule=%s",
					c.surname, c.given, v, c.accepted, c.rule)
			}
		})
	}
}

func TestIsRealOwner(t *testing.T) {
	if !IsRealOwner("MARTIN", "Jean") {
		t.Fatal("MARTIN Jean should be an owner")
	}
	if IsRealOwner("MONT DE NOIX", "") {
		t.Fatal("MONT DE NOIX should not be an owner")
	}
	c := New(nil)
	if !c.IsRealOwner("GAEC DES PRES FLEURIS", "") {
		t.Fatal("GAEC should be accepted before terrain words are checked")
	}
}

func TestIsLegalEntity(t *testing.T) {
	if !IsLegalEntity("Société Civile Immobilière") {
		t.Fatal("societe should be a legal entity")
	}
	if IsLegalEntity("DUPONT") {
		t.Fatal("DUPONT is a person")
	}
	if !IsPlaceLike("chemin du bois") || IsPlaceLike("DUPONT") {
		t.Fatal("IsPlaceLike mismatch")
	}
}
