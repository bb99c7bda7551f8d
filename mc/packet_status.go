package mc

const (
	ClientBoundResponsePacketID byte = 0x00
	ServerBoundRequestPacketID  byte = 0x00

	// StatusHandshakeProtocol is the protocol version announced in a status
	// handshake. Servers answer a status request regardless of the version.
	StatusHandshakeProtocol = 4

	LegacyKickPacketID byte = 0xFF
)

// LegacyPing is the request understood by servers that predate the
// length-prefixed status protocol.
var LegacyPing = []byte{0xFE, 0x01}

type ServerBoundHandshake struct {
	ProtocolVersion int
	ServerAddress   string
	ServerPort      uint16
	NextState       int
}

func (pk ServerBoundHandshake) Marshal() Packet {
	return MarshalPacket(
		ServerBoundHandshakePacketID,
		VarInt(pk.ProtocolVersion),
		String(pk.ServerAddress),
		UnsignedShort(pk.ServerPort),
		VarInt(pk.NextState),
	)
}

func UnmarshalServerBoundHandshake(packet Packet) (ServerBoundHandshake, error) {
	var (
		protocol VarInt
		addr     String
		port     UnsignedShort
		next     VarInt
	)

	if packet.ID != ServerBoundHandshakePacketID {
		return ServerBoundHandshake{}, ErrInvalidPacketID
	}

	if err := packet.Scan(&protocol, &addr, &port, &next); err != nil {
		return ServerBoundHandshake{}, err
	}

	return ServerBoundHandshake{
		ProtocolVersion: int(protocol),
		ServerAddress:   string(addr),
		ServerPort:      uint16(port),
		NextState:       int(next),
	}, nil
}

func (pk ServerBoundHandshake) IsStatusRequest() bool {
	return VarInt(pk.NextState) == HandshakeStatusState
}

// NewStatusHandshake is the handshake a status query opens with.
func NewStatusHandshake(host string, port uint16) ServerBoundHandshake {
	return ServerBoundHandshake{
		ProtocolVersion: StatusHandshakeProtocol,
		ServerAddress:   host,
		ServerPort:      port,
		NextState:       StatusState,
	}
}

type ServerBoundRequest struct{}

func (pk ServerBoundRequest) Marshal() Packet {
	return MarshalPacket(
		ServerBoundRequestPacketID,
	)
}

type ClientBoundResponse struct {
	JSONResponse String
}

func (pk ClientBoundResponse) Marshal() Packet {
	return MarshalPacket(
		ClientBoundResponsePacketID,
		pk.JSONResponse,
	)
}

func UnmarshalClientBoundResponse(packet Packet) (ClientBoundResponse, error) {
	var pk ClientBoundResponse

	if packet.ID != ClientBoundResponsePacketID {
		return pk, ErrInvalidPacketID
	}

	if err := packet.Scan(
		&pk.JSONResponse,
	); err != nil {
		return pk, err
	}

	return pk, nil
}

type ResponseJSON struct {
	Version     VersionJSON     `json:"version"`
	Players     PlayersJSON     `json:"players"`
	Description DescriptionJSON `json:"description"`
	Favicon     string          `json:"favicon,omitempty"`
}

type VersionJSON struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

type PlayersJSON struct {
	Max    int                `json:"max"`
	Online int                `json:"online"`
	Sample []PlayerSampleJSON `json:"sample,omitempty"`
}

type PlayerSampleJSON struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type DescriptionJSON struct {
	Text string `json:"text"`
}
