package ingest

// Update is the sum type yielded by Consume. Exactly one of Instruction
// or Account is non-nil on any given value — callers type-switch on
// which field is set rather than on a separate discriminant tag, since
// Go has no sum types of its own.
type Update struct {
	Instruction *InstructionUpdate
	Account     *AccountUpdate
}

// InstructionUpdate is one instruction envelope pulled off the live
// feed: its raw payload (discriminator still attached), the ordered
// account references the instruction was invoked with, and where in
// the chain it landed.
type InstructionUpdate struct {
	Raw         []byte
	Accounts    []string
	TxSignature string
	Slot        uint64
	BlockTime   int64
}

// AccountUpdate is one full account snapshot, produced only by the GPA
// backfill source — the live websocket feed never emits these.
type AccountUpdate struct {
	Pubkey string
	Data   []byte
	Slot   uint64
}
