package packet

// Client → server opcodes.
const (
	C_OPCODE_LOGIN       byte = 1
	C_OPCODE_ENTER_ROOM  byte = 2
	C_OPCODE_LEAVE_ROOM  byte = 3
	C_OPCODE_MOVE_TO     byte = 4
	C_OPCODE_PLACE_ITEM  byte = 5
	C_OPCODE_PICKUP_ITEM byte = 6
	C_OPCODE_USE_ITEM    byte = 7
)

// Server → client opcodes.
const (
	S_OPCODE_LOGIN_OK     byte = 101
	S_OPCODE_LOGIN_FAIL   byte = 102
	S_OPCODE_ROOM_READY   byte = 103
	S_OPCODE_ROOM_ERROR   byte = 104
	S_OPCODE_USER_UPDATE  byte = 105
	S_OPCODE_USER_REMOVE  byte = 106
	S_OPCODE_ITEM_ADD     byte = 107
	S_OPCODE_ITEM_REMOVE  byte = 108
	S_OPCODE_ITEM_UPDATE  byte = 109
	S_OPCODE_PATH_BLOCKED byte = 110
)

// LOGIN_FAIL reasons.
const (
	LoginFailBadCredentials byte = 1
	LoginFailBanned         byte = 2
	LoginFailAlreadyOnline  byte = 3
	LoginFailServerError    byte = 4
)

// ROOM_ERROR reasons.
const (
	RoomErrNotFound     byte = 1
	RoomErrDoorOccupied byte = 2
	RoomErrTileNotFound byte = 3
	RoomErrTileClosed   byte = 4
	RoomErrTileOccupied byte = 5
	RoomErrItemStacked  byte = 6
	RoomErrItemNotFound byte = 7
	RoomErrUnknownOffer byte = 8
	RoomErrNotOwner     byte = 9
	RoomErrInternal     byte = 10
)
