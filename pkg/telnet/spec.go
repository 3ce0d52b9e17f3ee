package telnet

import (
	"fmt"
	"strings"
)

// A good place to start with the Telnet protocol is Wikipedia:
// https://en.wikipedia.org/wiki/Telnet
//
// RFCs of particular interest:
// - RFC 854  : Telnet Protocol Specification
// - RFC 855  : Telnet Option Specifications
// - RFC 856  : Telnet Binary Transmission
// - RFC 857  : Telnet Echo Option
// - RFC 858  : Telnet Suppress Go Ahead Option
// - RFC 885  : Telnet End of Record Option
// - RFC 1073 : Telnet Window Size Option
// - RFC 1091 : Telnet Terminal-Type Option
// - RFC 1143 : The Q Method of Implementing TELNET Option Negotiation

// Command is the byte following IAC.
type Command byte

// Option is a negotiable capability code.
type Option byte

const (
	// RFC 885
	EOR Command = 239 // End of Record

	// RFC 854: Telnet Protocol Specification
	SE   Command = 240 // Sub negotiation End
	NOP  Command = 241 // No Operation
	DM   Command = 242 // Data Mark
	BRK  Command = 243 // Break
	IP   Command = 244 // Interrupt Process
	AO   Command = 245 // Abort Output
	AYT  Command = 246 // Are You There?
	EC   Command = 247 // Erase Character
	EL   Command = 248 // Erase Line
	GA   Command = 249 // Go Ahead
	SB   Command = 250 // Sub negotiation Begin
	WILL Command = 251 // Will
	WONT Command = 252 // Won't
	DO   Command = 253 // Do
	DONT Command = 254 // Don't
	IAC  Command = 255 // Interpret As Command
)

// Sub-negotiation verbs shared by several options.
const (
	IS   byte = 0
	SEND byte = 1
	INFO byte = 2
)

const (
	TransmitBinary Option = 0   // RFC 856
	Echo           Option = 1   // RFC 857
	SGA            Option = 3   // RFC 858 - Suppress Go Ahead
	Status         Option = 5   // RFC 859
	TimingMark     Option = 6   // RFC 860
	TType          Option = 24  // RFC 1091 - Terminal Type
	EndOfRecord    Option = 25  // RFC 885
	NAWS           Option = 31  // RFC 1073 - Negotiate About Window Size
	TerminalSpeed  Option = 32  // RFC 1079
	Linemode       Option = 34  // RFC 1184
	NewEnvironOld  Option = 36  // Deprecated RFC 1408 'ENVIRON'
	NewEnviron     Option = 39  // RFC 1572 'NEW-ENVIRON'
	Charset        Option = 42  // RFC 2066
	MSSP           Option = 70  // MUD Server Status Protocol
	MCCP2          Option = 86  // MUD Client Compression Protocol v2
	MSP            Option = 90  // MUD Sound Protocol
	MXP            Option = 91  // MUD eXtension Protocol
	GMCP           Option = 201 // Generic MUD Communication Protocol
	Exopl          Option = 255 // RFC 861 - Extended Options List
)

// iac is the raw introducer byte.
const iac = byte(IAC)

// CommandNames maps Telnet command bytes to their string representation.
var CommandNames = map[Command]string{
	EOR:  "EOR",
	SE:   "SE",
	NOP:  "NOP",
	DM:   "DM",
	BRK:  "BRK",
	IP:   "IP",
	AO:   "AO",
	AYT:  "AYT",
	EC:   "EC",
	EL:   "EL",
	GA:   "GA",
	SB:   "SB",
	WILL: "WILL",
	WONT: "WONT",
	DO:   "DO",
	DONT: "DONT",
	IAC:  "IAC",
}

// OptionNames maps Telnet option bytes to their string representation.
var OptionNames = map[Option]string{
	TransmitBinary: "TransmitBinary",
	Echo:           "Echo",
	SGA:            "SGA",
	Status:         "Status",
	TimingMark:     "TimingMark",
	TType:          "TType",
	EndOfRecord:    "EOR",
	NAWS:           "NAWS",
	TerminalSpeed:  "TerminalSpeed",
	Linemode:       "Linemode",
	NewEnvironOld:  "NewEnvironOld",
	NewEnviron:     "NewEnviron",
	Charset:        "Charset",
	MSSP:           "MSSP",
	MCCP2:          "MCCP2",
	MSP:            "MSP",
	MXP:            "MXP",
	GMCP:           "GMCP",
	Exopl:          "Exopl",
}

func (c Command) String() string {
	if name, ok := CommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", byte(c))
}

// IsNegotiation reports whether c is one of WILL, WONT, DO or DONT.
func (c Command) IsNegotiation() bool {
	return c >= WILL && c <= DONT
}

// single reports whether c is a two byte command that carries no option.
func (c Command) single() bool {
	return c >= EOR && c <= GA
}

func (o Option) String() string {
	if name, ok := OptionNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", byte(o))
}

// LookupOption resolves an option by its name in OptionNames, ignoring case.
func LookupOption(name string) (Option, bool) {
	for opt, n := range OptionNames {
		if strings.EqualFold(n, name) {
			return opt, true
		}
	}
	return 0, false
}
