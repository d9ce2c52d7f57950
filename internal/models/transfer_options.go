package models

import "strings"

// TransferOptions are flags that travel with a transfer. The cache never
// interprets them; only the ledger does.
type TransferOptions uint32

const (
	OptionNone TransferOptions = 0

	OptionAnnounceToReceiver TransferOptions = 1 << (iota - 1)
	OptionAnnounceToSender
	OptionAllowDeficit
	OptionIsPayment
	OptionSuppressDefaultAnnounce
	OptionPlayerToPlayer
)

var optionNames = []struct {
	flag TransferOptions
	name string
}{
	{OptionAnnounceToReceiver, "announce_to_receiver"},
	{OptionAnnounceToSender, "announce_to_sender"},
	{OptionAllowDeficit, "allow_deficit"},
	{OptionIsPayment, "is_payment"},
	{OptionSuppressDefaultAnnounce, "suppress_default_announce"},
	{OptionPlayerToPlayer, "player_to_player"},
}

// Has reports whether every bit of flag is set.
func (o TransferOptions) Has(flag TransferOptions) bool {
	return flag != OptionNone && o&flag == flag
}

func (o TransferOptions) String() string {
	if o == OptionNone {
		return "none"
	}

	var names []string
	for _, n := range optionNames {
		if o.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}
