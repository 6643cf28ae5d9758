/*
Vault contract is a custodial balance ledger for a single owner.

The vault holds one NEP-17 token chosen at initialization and keeps a recorded
balance equal to the initial balance plus all deposits minus all accepted
deductions and withdrawals. Deposits are pulled from the depositor into the
vault before the balance is credited. Deductions (metered charges) are
debited first and then forwarded to the revenue pool if one is configured;
without a pool the deducted tokens stay in the vault as revenue which the
admin can distribute. Withdrawals send tokens back to the owner or to a
destination chosen by the owner.

Roles

Owner controls withdrawals, the allowed depositor and ownership transfer.
Admin starts as the owner and controls revenue distribution and admin
transfer. Deductions can be made by the owner or the admin. The allowed
depositor may only deposit. Only the account that deployed the contract can
initialize it, naming any owner.

Every failed invocation panics with a message starting with one of the error
kinds declared in vaultconst package, so nothing is changed and nothing is
notified.

Contract notifications

Initialize notification. This notification is produced when the vault record
is created.

	Initialize
	  - name: owner
	    type: Hash160
	  - name: token
	    type: Hash160
	  - name: balance
	    type: Integer

AllowedDepositorChanged notification. This notification is produced when the
owner grants or revokes deposit rights. Depositor is null on revoke.

	AllowedDepositorChanged
	  - name: depositor
	    type: Any

Deposit notification. This notification is produced when tokens are taken
into custody and credited.

	Deposit
	  - name: from
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: balance
	    type: Integer

Deduct notification. This notification is produced for every accepted
deduction, including each item of a batch with the balance after that item.
Request ID is an empty string if it wasn't provided.

	Deduct
	  - name: caller
	    type: Hash160
	  - name: requestID
	    type: String
	  - name: amount
	    type: Integer
	  - name: balance
	    type: Integer

Withdraw notification. This notification is produced when tokens are sent to
the owner.

	Withdraw
	  - name: owner
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: balance
	    type: Integer

WithdrawTo notification. This notification is produced when tokens are sent
to a destination chosen by the owner.

	WithdrawTo
	  - name: owner
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: balance
	    type: Integer

Distribute notification. This notification is produced when the admin sends
out accumulated revenue.

	Distribute
	  - name: admin
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

OwnershipTransferred and AdminTransferred notifications. These notifications
are produced when a role changes hands.

	OwnershipTransferred
	  - name: previous
	    type: Hash160
	  - name: owner
	    type: Hash160

	AdminTransferred
	  - name: previous
	    type: Hash160
	  - name: admin
	    type: Hash160

# Contract storage scheme

	| Key                | Value                       | Description                               |
	|--------------------|-----------------------------|-------------------------------------------|
	| `record`           | serialized Record structure | owner, admin, token, balance and limits   |
	| `allowedDepositor` | Hash160                     | present only while a depositor is allowed |
	| `revenuePool`      | Hash160                     | present only if a revenue pool was set    |
	| `deployer`         | Hash160                     | sender of the deployment transaction      |
*/
package vault
