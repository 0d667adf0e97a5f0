package mosig

import (
	"math/bits"
	"strings"
)

// SigSet is a bitmask of signals, bit n-1 standing for signal n.
// It is a value type; every operation returns a new set.
type SigSet uint32

// EmptySet returns a set with no members.
func EmptySet() SigSet { return 0 }

// FillSet returns a set holding every valid signal.
func FillSet() SigSet { return ^SigSet(0) }

// SetOf builds a set from signals. It panics on an invalid signal and is
// meant for constants and tests.
func SetOf(sigs ...Signal) SigSet {
	var s SigSet
	for _, sig := range sigs {
		var err error
		if s, err = s.Add(sig); err != nil {
			panic(err)
		}
	}
	return s
}

// Add returns s with sig added.
func (s SigSet) Add(sig Signal) (SigSet, error) {
	if err := checkSignal(sig); err != nil {
		return s, err
	}
	return s | bit(sig), nil
}

// Del returns s with sig removed. Removing an absent member is a no-op.
func (s SigSet) Del(sig Signal) (SigSet, error) {
	if err := checkSignal(sig); err != nil {
		return s, err
	}
	return s &^ bit(sig), nil
}

// IsMember reports whether sig is in s.
func (s SigSet) IsMember(sig Signal) (bool, error) {
	if err := checkSignal(sig); err != nil {
		return false, err
	}
	return s.has(sig), nil
}

// Union returns s | o.
func (s SigSet) Union(o SigSet) SigSet { return s | o }

// Minus returns s &^ o.
func (s SigSet) Minus(o SigSet) SigSet { return s &^ o }

// Empty reports whether s has no members.
func (s SigSet) Empty() bool { return s == 0 }

// Len returns the number of members.
func (s SigSet) Len() int { return bits.OnesCount32(uint32(s)) }

// Lowest returns the lowest numbered member, or 0 if s is empty.
func (s SigSet) Lowest() Signal {
	if s == 0 {
		return 0
	}
	return Signal(bits.TrailingZeros32(uint32(s)) + 1)
}

// Signals lists the members in ascending order.
func (s SigSet) Signals() []Signal {
	var ret []Signal
	for s != 0 {
		sig := s.Lowest()
		ret = append(ret, sig)
		s &^= bit(sig)
	}
	return ret
}

func (s SigSet) String() string {
	names := make([]string, 0, s.Len())
	for _, sig := range s.Signals() {
		names = append(names, sig.Name())
	}
	return "{" + strings.Join(names, ",") + "}"
}

func (s SigSet) has(sig Signal) bool { return s&bit(sig) != 0 }

func bit(sig Signal) SigSet { return 1 << uint(sig-1) }
