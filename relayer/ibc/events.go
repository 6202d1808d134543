package ibc

// IbcEvent is the tagged union of spec §3: a NewBlock marker, client/
// connection/channel lifecycle events, packet lifecycle events, and a
// terminal ChainError carrier. Concrete variants implement eventTag()
// as a closed-set marker rather than exposing dynamic dispatch —
// consumers type-switch on the concrete type, matching spec §9's
// guidance that this union needs no virtual dispatch of its own.
type IbcEvent interface {
	eventTag() string
}

// EventType returns the event's wire tag (e.g. "send_packet"),
// grounded on rust:types/src/ibc_events.rs's IbcEventType enum.
func EventType(e IbcEvent) string { return e.eventTag() }

// --- NewBlock ---

// NewBlockEvent is synthesized by the subscriber for every new block
// (spec §4.3: "NewBlock injects a synthetic NewBlock event").
type NewBlockEvent struct{}

func (NewBlockEvent) eventTag() string { return "new_block" }

// --- Client lifecycle ---

type CreateClientEvent struct {
	ClientID       string
	ClientType     string
	ConsensusHeight Height
}

func (CreateClientEvent) eventTag() string { return "create_client" }

type UpdateClientEvent struct {
	ClientID       string
	ClientType     string
	ConsensusHeight Height
}

func (UpdateClientEvent) eventTag() string { return "update_client" }

type UpgradeClientEvent struct {
	ClientID       string
	ClientType     string
	ConsensusHeight Height
}

func (UpgradeClientEvent) eventTag() string { return "upgrade_client" }

// --- Connection lifecycle ---

type ConnectionAttributes struct {
	ConnectionID             string
	ClientID                 string
	CounterpartyConnectionID string
	CounterpartyClientID     string
}

type OpenInitConnectionEvent struct{ ConnectionAttributes }

func (OpenInitConnectionEvent) eventTag() string { return "connection_open_init" }

type OpenTryConnectionEvent struct{ ConnectionAttributes }

func (OpenTryConnectionEvent) eventTag() string { return "connection_open_try" }

type OpenAckConnectionEvent struct{ ConnectionAttributes }

func (OpenAckConnectionEvent) eventTag() string { return "connection_open_ack" }

type OpenConfirmConnectionEvent struct{ ConnectionAttributes }

func (OpenConfirmConnectionEvent) eventTag() string { return "connection_open_confirm" }

// --- Channel lifecycle ---

type ChannelAttributes struct {
	PortID                string
	ChannelID             string
	ConnectionID          string
	CounterpartyPortID    string
	CounterpartyChannelID string
}

type OpenInitChannelEvent struct{ ChannelAttributes }

func (OpenInitChannelEvent) eventTag() string { return "channel_open_init" }

type OpenTryChannelEvent struct{ ChannelAttributes }

func (OpenTryChannelEvent) eventTag() string { return "channel_open_try" }

type OpenAckChannelEvent struct{ ChannelAttributes }

func (OpenAckChannelEvent) eventTag() string { return "channel_open_ack" }

type OpenConfirmChannelEvent struct{ ChannelAttributes }

func (OpenConfirmChannelEvent) eventTag() string { return "channel_open_confirm" }

type CloseInitChannelEvent struct{ ChannelAttributes }

func (CloseInitChannelEvent) eventTag() string { return "channel_close_init" }

type CloseConfirmChannelEvent struct{ ChannelAttributes }

func (CloseConfirmChannelEvent) eventTag() string { return "channel_close_confirm" }

// --- Packet lifecycle ---

// SendPacketEvent carries a full Packet (spec §3: "SendPacket carries
// a full Packet"), the only event this engine's clustering stage (C6)
// consumes.
type SendPacketEvent struct {
	Packet Packet
}

func (SendPacketEvent) eventTag() string { return "send_packet" }

type ReceivePacketEvent struct {
	Packet Packet
}

func (ReceivePacketEvent) eventTag() string { return "receive_packet" }

type WriteAcknowledgementEvent struct {
	Packet          Packet
	Acknowledgement []byte
}

func (WriteAcknowledgementEvent) eventTag() string { return "write_acknowledgement" }

type AcknowledgePacketEvent struct {
	Packet Packet
}

func (AcknowledgePacketEvent) eventTag() string { return "acknowledge_packet" }

type TimeoutPacketEvent struct {
	Packet Packet
}

func (TimeoutPacketEvent) eventTag() string { return "timeout_packet" }

type TimeoutOnClosePacketEvent struct {
	Packet Packet
}

func (TimeoutOnClosePacketEvent) eventTag() string { return "timeout_packet_on_close" }

// --- Terminal failure carrier ---

// ChainErrorEvent is a terminal failure carrier (spec §3). Neither the
// subscriber nor the chain handle produces it: the chain handle
// reports a transaction rejected on-chain as an ErrChainRejected error,
// not as an event in its returned list. The handshake's firstOf turns
// one found in an event list into that same error.
type ChainErrorEvent struct {
	Message string
}

func (ChainErrorEvent) eventTag() string { return "chain_error" }

// --- IbcEventWithHeight ---

// IbcEventWithHeight pairs an event with the source-chain block
// height it was observed at (spec §3).
type IbcEventWithHeight struct {
	Event  IbcEvent
	Height Height
}

// WithHeight returns a copy of e carrying a new height, matching the
// Rust original's `with_height` builder (rust:types/src/ibc_events.rs).
func (e IbcEventWithHeight) WithHeight(h Height) IbcEventWithHeight {
	e.Height = h
	return e
}
