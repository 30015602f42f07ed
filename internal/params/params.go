package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	// HashBytes is the output size of the message digest helper.
	HashBytes = SecBytes
)
