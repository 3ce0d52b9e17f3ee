package telnet

import "telwire/pkg/bitflags"

// CompatFlag is one of the four per-option negotiation bits.
type CompatFlag uint8

const (
	// LocalSupported means we are willing to enable the option on our side.
	LocalSupported CompatFlag = iota
	// RemoteSupported means we allow the peer to enable the option.
	RemoteSupported
	// LocalEnabled means the option is active on our side.
	LocalEnabled
	// RemoteEnabled means the option is active on the peer's side.
	RemoteEnabled
)

// CompatFlags is the flag set stored for one option.
type CompatFlags = bitflags.Flags[CompatFlag]

// Entry configures a single option when building a table.
type Entry struct {
	Option Option
	Flags  CompatFlags
}

// Table holds negotiation policy and state for all 256 options. The zero
// value has every option unsupported.
type Table struct {
	options [256]CompatFlags
}

// NewTable returns a table with the given entries applied.
func NewTable(entries ...Entry) *Table {
	t := &Table{}
	for _, e := range entries {
		t.options[e.Option] = e.Flags
	}
	return t
}

// Get returns the flags stored for opt.
func (t *Table) Get(opt Option) CompatFlags {
	return t.options[opt]
}

// Set replaces the flags stored for opt.
func (t *Table) Set(opt Option, flags CompatFlags) {
	t.options[opt] = flags
}

// Option returns a handle for reading and writing the state of opt.
func (t *Table) Option(opt Option) OptionState {
	return OptionState{table: t, option: opt}
}

// Support allows opt in both directions.
func (t *Table) Support(opt Option) {
	t.options[opt].Set(LocalSupported)
	t.options[opt].Set(RemoteSupported)
}

// SupportLocal allows us to enable opt.
func (t *Table) SupportLocal(opt Option) {
	t.options[opt].Set(LocalSupported)
}

// SupportRemote allows the peer to enable opt.
func (t *Table) SupportRemote(opt Option) {
	t.options[opt].Set(RemoteSupported)
}

// ResetStates clears every enabled flag and keeps the support policy.
func (t *Table) ResetStates() {
	for i := range t.options {
		t.options[i].Unset(LocalEnabled)
		t.options[i].Unset(RemoteEnabled)
	}
}

// Supported returns every option with at least one support flag, in order.
func (t *Table) Supported() []Option {
	var opts []Option
	for i, f := range t.options {
		if f.Has(LocalSupported) || f.Has(RemoteSupported) {
			opts = append(opts, Option(i))
		}
	}
	return opts
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := *t
	return &c
}

// OptionState is a view of one option inside a Table. It holds no state of
// its own, so every read and write goes straight to the table.
type OptionState struct {
	table  *Table
	option Option
}

// Option returns the option code the view is bound to.
func (s OptionState) Option() Option { return s.option }

// Flags returns the option's current flags.
func (s OptionState) Flags() CompatFlags { return s.table.options[s.option] }

func (s OptionState) Local() bool         { return s.Flags().Has(LocalSupported) }
func (s OptionState) Remote() bool        { return s.Flags().Has(RemoteSupported) }
func (s OptionState) LocalEnabled() bool  { return s.Flags().Has(LocalEnabled) }
func (s OptionState) RemoteEnabled() bool { return s.Flags().Has(RemoteEnabled) }

func (s OptionState) SetLocal(v bool)         { s.toggle(LocalSupported, v) }
func (s OptionState) SetRemote(v bool)        { s.toggle(RemoteSupported, v) }
func (s OptionState) SetLocalEnabled(v bool)  { s.toggle(LocalEnabled, v) }
func (s OptionState) SetRemoteEnabled(v bool) { s.toggle(RemoteEnabled, v) }

func (s OptionState) toggle(flag CompatFlag, v bool) {
	s.table.options[s.option].Toggle(flag, v)
}
