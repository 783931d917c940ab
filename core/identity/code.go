package identity

import (
	"fmt"
	"strconv"
)

var codeBands = map[Role]int{
	RoleAdmin:     0,
	RoleProfessor: 10000,
	RoleStudent:   20000,
}

// CodeBand returns the numeric base of role's codes.
func CodeBand(role Role) int {
	return codeBands[role]
}

// CodeSeq returns the position of code within role's band.
func CodeSeq(role Role, code string) (int, bool) {
	n, err := strconv.Atoi(code)
	if err != nil || len(code) != 5 {
		return 0, false
	}
	seq := n - CodeBand(role)
	if seq < 1 || seq >= 10000 {
		return 0, false
	}
	return seq, true
}

// NextCode returns the code to assign to a new identity of role when count
// identities of that role exist and highest is the largest sequence ever issued
// in the band. It is band + count + 1, bumped past highest so a code freed by a
// deletion is never handed out again.
func NextCode(role Role, count, highest int) string {
	seq := count
	if highest > seq {
		seq = highest
	}
	return fmt.Sprintf("%05d", CodeBand(role)+seq+1)
}
