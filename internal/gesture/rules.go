package gesture

import (
	"github.com/ayusman/mudra/internal/detector"
)

// state is one entry of a finger pattern.
type state uint8

const (
	wild state = iota
	open
	closed
)

// pattern lists the required state per finger in thumb..pinky order.
type pattern [numFingers]state

func (p pattern) matches(s FingerStates) bool {
	for f, want := range p {
		switch want {
		case open:
			if !s[f] {
				return false
			}
		case closed:
			if s[f] {
				return false
			}
		}
	}
	return true
}

// rule is one row of the decision list. A nil test always passes.
type rule struct {
	name    string
	pattern pattern
	test    func(Pose) bool
	resolve func(Pose) Label
}

func fixed(l Label) func(Pose) Label {
	return func(Pose) Label { return l }
}

func near(i, j int) func(Pose) bool {
	return func(p Pose) bool { return p.Close(i, j) }
}

const (
	o = open
	c = closed
)

// ruleTable is evaluated top to bottom; the first row whose pattern and test
// both hold decides the label. Order matters: the c,o,o,c,c pattern appears
// three times and c,c,c,c,c twice with different proximity checks.
var ruleTable = []rule{
	{name: "C", pattern: pattern{o, o, o, o, o}, resolve: fixed("C")},
	{name: "B", pattern: pattern{c, o, o, o, o}, resolve: fixed("B")},
	{name: "D", pattern: pattern{c, o, c, c, c}, resolve: fixed("D")},
	{
		name:    "U/R",
		pattern: pattern{c, o, o, c, c},
		test:    near(detector.IndexPIP, detector.MiddlePIP),
		resolve: func(p Pose) Label {
			if p.Close(detector.MiddleTip, detector.IndexTip) {
				return "R"
			}
			return "U"
		},
	},
	{
		name:    "K/V",
		pattern: pattern{c, o, o, c, c},
		resolve: func(p Pose) Label {
			if p.Close(detector.ThumbTip, detector.IndexPIP) {
				return "K"
			}
			return "V"
		},
	},
	{name: "W", pattern: pattern{c, o, o, o, c}, resolve: fixed("W")},
	{name: "I LOVE YOU", pattern: pattern{o, o, c, c, o}, resolve: fixed(LabelILoveYou)},
	{name: "Y", pattern: pattern{o, c, c, c, o}, resolve: fixed("Y")},
	{name: "X", pattern: pattern{c, o, c, c, c}, test: near(detector.IndexDIP, detector.IndexPIP), resolve: fixed("X")},
	{name: "P", pattern: pattern{o, o, o, c, c}, test: near(detector.ThumbTip, detector.IndexPIP), resolve: fixed("P")},
	{name: "S", pattern: pattern{c, c, c, c, c}, test: near(detector.IndexDIP, detector.ThumbIP), resolve: fixed("S")},
	{
		name:    "T/O/A",
		pattern: pattern{o, c, c, c, c},
		resolve: func(p Pose) Label {
			switch {
			case p.Close(detector.ThumbTip, detector.MiddleMCP):
				return "T"
			case p.Close(detector.ThumbTip, detector.IndexTip):
				return "O"
			default:
				return "A"
			}
		},
	},
	{name: "I", pattern: pattern{c, c, c, c, o}, resolve: fixed("I")},
	{name: "F", pattern: pattern{wild, c, o, o, o}, test: near(detector.ThumbTip, detector.IndexTip), resolve: fixed("F")},
	{name: "L", pattern: pattern{o, o, c, c, c}, resolve: fixed("L")},
	{
		name:    "E",
		pattern: pattern{c, c, c, c, c},
		test:    func(p Pose) bool { return !p.Close(detector.IndexDIP, detector.ThumbIP) },
		resolve: fixed("E"),
	},
	{name: "H", pattern: pattern{o, o, o, c, c}, resolve: fixed("H")},
}

// RuleNames returns the decision list row names in evaluation order.
func RuleNames() []string {
	names := make([]string, len(ruleTable))
	for i, r := range ruleTable {
		names[i] = r.name
	}
	return names
}

// RuleClassifier labels poses with the hand-authored decision list.
type RuleClassifier struct{}

// NewRuleClassifier creates a RuleClassifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify returns the label of the first matching rule, or LabelNotInASL
// when none matches. Only a malformed pose yields an error.
func (r *RuleClassifier) Classify(p Pose) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	label, _ := Match(ExtractFingers(p), p)
	return Result{Label: label}, nil
}

// Match runs the decision list over precomputed finger states and returns the
// label with the name of the row that produced it ("" when none matched).
// A pose without exactly NumLandmarks points matches no row.
func Match(s FingerStates, p Pose) (Label, string) {
	if len(p) != detector.NumLandmarks {
		return LabelNotInASL, ""
	}
	for _, r := range ruleTable {
		if !r.pattern.matches(s) {
			continue
		}
		if r.test != nil && !r.test(p) {
			continue
		}
		return r.resolve(p), r.name
	}
	return LabelNotInASL, ""
}
