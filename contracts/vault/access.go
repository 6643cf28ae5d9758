package vault

import (
	"github.com/meterpay/vault-contract/common"
	"github.com/meterpay/vault-contract/contracts/vault/vaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
)

const (
	opSetDepositor      = "setAllowedDepositor"
	opDeposit           = "deposit"
	opDeduct            = "deduct"
	opWithdraw          = "withdraw"
	opDistribute        = "distribute"
	opTransferOwnership = "transferOwnership"
	opTransferAdmin     = "transferAdmin"
)

// checkAccess authenticates caller and authorizes it for op. It panics with
// ErrUnauthorized on fail.
func checkAccess(op string, caller interop.Hash160, r Record, depositor interface{}) {
	checkHash(caller, "caller")
	common.CheckWitness(caller)

	reason := authorize(op, caller, r, depositor)
	if reason != "" {
		panic(vaultconst.ErrUnauthorized + ": " + reason)
	}
}

// authorize returns an empty string if caller may perform op on the vault
// and the denial reason otherwise. depositor is the allowed depositor or nil.
func authorize(op string, caller interop.Hash160, r Record, depositor interface{}) string {
	switch op {
	case opDeposit:
		if caller.Equals(r.Owner) {
			return ""
		}
		if depositor != nil && caller.Equals(depositor) {
			return ""
		}
		return "owner or allowed depositor only"
	case opDeduct:
		if caller.Equals(r.Owner) || caller.Equals(r.Admin) {
			return ""
		}
		return "owner or admin only"
	case opSetDepositor, opWithdraw, opTransferOwnership:
		if caller.Equals(r.Owner) {
			return ""
		}
		return "owner only"
	case opDistribute, opTransferAdmin:
		if caller.Equals(r.Admin) {
			return ""
		}
		return "admin only"
	}

	return "unknown operation " + op
}
