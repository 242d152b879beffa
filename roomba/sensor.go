package roomba

// SensorID is the packet id of a sensor or sensor group.
type SensorID byte

// Single sensor packets.
const (
	PacketBumpsWheelDrops     SensorID = 7
	PacketWall                SensorID = 8 // deprecated, use PacketLightBumper
	PacketCliffLeft           SensorID = 9
	PacketCliffFrontLeft      SensorID = 10
	PacketCliffFrontRight     SensorID = 11
	PacketCliffRight          SensorID = 12
	PacketVirtualWall         SensorID = 13
	PacketWheelOvercurrents   SensorID = 14
	PacketDirtDetect          SensorID = 15
	PacketUnused1             SensorID = 16 // filler, only seen inside groups
	PacketIROmni              SensorID = 17
	PacketButtons             SensorID = 18
	PacketDistance            SensorID = 19
	PacketAngle               SensorID = 20
	PacketChargingState       SensorID = 21
	PacketVoltage             SensorID = 22
	PacketCurrent             SensorID = 23
	PacketTemperature         SensorID = 24
	PacketBatteryCharge       SensorID = 25
	PacketBatteryCapacity     SensorID = 26
	PacketWallSignal          SensorID = 27 // deprecated, use PacketLightBumpRight
	PacketCliffLeftSignal     SensorID = 28
	PacketCliffFrontLeftSig   SensorID = 29
	PacketCliffFrontRightSig  SensorID = 30
	PacketCliffRightSignal    SensorID = 31
	PacketUnused2             SensorID = 32
	PacketUnused3             SensorID = 33
	PacketChargingSources     SensorID = 34
	PacketOIMode              SensorID = 35
	PacketSongNumber          SensorID = 36
	PacketSongPlaying         SensorID = 37
	PacketStreamPackets       SensorID = 38
	PacketReqVelocity         SensorID = 39
	PacketReqRadius           SensorID = 40
	PacketReqRightVelocity    SensorID = 41
	PacketReqLeftVelocity     SensorID = 42
	PacketLeftEncoderCounts   SensorID = 43
	PacketRightEncoderCounts  SensorID = 44
	PacketLightBumper         SensorID = 45
	PacketLightBumpLeft       SensorID = 46
	PacketLightBumpFrontLeft  SensorID = 47
	PacketLightBumpCenterLeft SensorID = 48
	PacketLightBumpCenterRight SensorID = 49
	PacketLightBumpFrontRight  SensorID = 50
	PacketLightBumpRight       SensorID = 51
	PacketIRLeft               SensorID = 52
	PacketIRRight              SensorID = 53
	PacketLeftMotorCurrent     SensorID = 54
	PacketRightMotorCurrent    SensorID = 55
	PacketMainBrushCurrent     SensorID = 56
	PacketSideBrushCurrent     SensorID = 57
	PacketStasis               SensorID = 58
)

// Group packets. A group expands to a fixed, ordered list of single
// packets and is answered as their raw concatenation.
const (
	PacketGroup0   SensorID = 0   // 7-26
	PacketGroup1   SensorID = 1   // 7-16
	PacketGroup2   SensorID = 2   // 17-20
	PacketGroup3   SensorID = 3   // 21-26
	PacketGroup4   SensorID = 4   // 27-34
	PacketGroup5   SensorID = 5   // 35-42
	PacketGroup6   SensorID = 6   // 7-42
	PacketGroupAll SensorID = 100 // 7-58
	PacketGroup101 SensorID = 101 // 43-58
	PacketGroup106 SensorID = 106 // 46-51
	PacketGroup107 SensorID = 107 // 54-58
)

// SensorKind is the numeric encoding of a sensor's payload.
type SensorKind int

const (
	Unsigned SensorKind = iota
	Signed
	Boolean // unsigned width 1 with domain {0,1}
	BitFlags
)

// SensorSpec describes one packet id: its byte width, how its payload is
// encoded, the bit->name table for bit-flag packets (index 0 is the least
// significant bit), and member packets when the id is a group.
type SensorSpec struct {
	ID      SensorID
	Name    string
	Width   int
	Kind    SensorKind
	Bits    []string
	Members []SensorID
}

// IsGroup reports whether the packet expands to other packets.
func (s *SensorSpec) IsGroup() bool { return len(s.Members) > 0 }

var sensorCatalog = map[SensorID]*SensorSpec{
	PacketBumpsWheelDrops: {Name: "bumps-wheel-drops", Width: 1, Kind: BitFlags,
		Bits: []string{"bump-right", "bump-left", "wheel-drop-right", "wheel-drop-left"}},
	PacketWall:            {Name: "wall", Width: 1, Kind: Boolean},
	PacketCliffLeft:       {Name: "cliff-left", Width: 1, Kind: Boolean},
	PacketCliffFrontLeft:  {Name: "cliff-front-left", Width: 1, Kind: Boolean},
	PacketCliffFrontRight: {Name: "cliff-front-right", Width: 1, Kind: Boolean},
	PacketCliffRight:      {Name: "cliff-right", Width: 1, Kind: Boolean},
	PacketVirtualWall:     {Name: "virtual-wall", Width: 1, Kind: Boolean},
	PacketWheelOvercurrents: {Name: "wheel-overcurrents", Width: 1, Kind: BitFlags,
		Bits: []string{"side-brush", "vacuum", "main-brush", "right-wheel", "left-wheel"}},
	PacketDirtDetect: {Name: "dirt-detect", Width: 1, Kind: Unsigned},
	PacketUnused1:    {Name: "unused-1", Width: 1, Kind: Unsigned},
	PacketIROmni:     {Name: "ir-omni", Width: 1, Kind: Unsigned},
	PacketButtons: {Name: "buttons", Width: 1, Kind: BitFlags,
		Bits: []string{"clean", "spot", "dock", "minute", "hour", "day", "schedule", "clock"}},
	PacketDistance:        {Name: "distance", Width: 2, Kind: Signed},
	PacketAngle:           {Name: "angle", Width: 2, Kind: Signed},
	PacketChargingState:   {Name: "charging-state", Width: 1, Kind: Unsigned},
	PacketVoltage:         {Name: "voltage", Width: 2, Kind: Unsigned},
	PacketCurrent:         {Name: "current", Width: 2, Kind: Signed},
	PacketTemperature:     {Name: "temperature", Width: 1, Kind: Signed},
	PacketBatteryCharge:   {Name: "battery-charge", Width: 2, Kind: Unsigned},
	PacketBatteryCapacity: {Name: "battery-capacity", Width: 2, Kind: Unsigned},
	PacketWallSignal:      {Name: "wall-signal", Width: 2, Kind: Unsigned},
	PacketCliffLeftSignal: {Name: "cliff-left-signal", Width: 2, Kind: Unsigned},
	PacketCliffFrontLeftSig: {Name: "cliff-front-left-signal", Width: 2, Kind: Unsigned},
	PacketCliffFrontRightSig: {Name: "cliff-front-right-signal", Width: 2, Kind: Unsigned},
	PacketCliffRightSignal:   {Name: "cliff-right-signal", Width: 2, Kind: Unsigned},
	PacketUnused2:            {Name: "unused-2", Width: 1, Kind: Unsigned},
	PacketUnused3:            {Name: "unused-3", Width: 2, Kind: Unsigned},
	PacketChargingSources: {Name: "charging-sources", Width: 1, Kind: BitFlags,
		Bits: []string{"internal-charger", "home-base"}},
	PacketOIMode:        {Name: "oi-mode", Width: 1, Kind: Unsigned},
	PacketSongNumber:    {Name: "song-number", Width: 1, Kind: Unsigned},
	PacketSongPlaying:   {Name: "song-playing", Width: 1, Kind: Boolean},
	PacketStreamPackets: {Name: "stream-packets", Width: 1, Kind: Unsigned},
	PacketReqVelocity:   {Name: "requested-velocity", Width: 2, Kind: Signed},
	PacketReqRadius:     {Name: "requested-radius", Width: 2, Kind: Signed},
	PacketReqRightVelocity: {Name: "requested-right-velocity", Width: 2, Kind: Signed},
	PacketReqLeftVelocity:  {Name: "requested-left-velocity", Width: 2, Kind: Signed},
	PacketLeftEncoderCounts:  {Name: "left-encoder-counts", Width: 2, Kind: Signed},
	PacketRightEncoderCounts: {Name: "right-encoder-counts", Width: 2, Kind: Signed},
	PacketLightBumper: {Name: "light-bumper", Width: 1, Kind: BitFlags,
		Bits: []string{"left", "front-left", "center-left", "center-right", "front-right", "right"}},
	PacketLightBumpLeft:        {Name: "light-bump-left", Width: 2, Kind: Unsigned},
	PacketLightBumpFrontLeft:   {Name: "light-bump-front-left", Width: 2, Kind: Unsigned},
	PacketLightBumpCenterLeft:  {Name: "light-bump-center-left", Width: 2, Kind: Unsigned},
	PacketLightBumpCenterRight: {Name: "light-bump-center-right", Width: 2, Kind: Unsigned},
	PacketLightBumpFrontRight:  {Name: "light-bump-front-right", Width: 2, Kind: Unsigned},
	PacketLightBumpRight:       {Name: "light-bump-right", Width: 2, Kind: Unsigned},
	PacketIRLeft:               {Name: "ir-left", Width: 1, Kind: Unsigned},
	PacketIRRight:              {Name: "ir-right", Width: 1, Kind: Unsigned},
	PacketLeftMotorCurrent:     {Name: "left-motor-current", Width: 2, Kind: Signed},
	PacketRightMotorCurrent:    {Name: "right-motor-current", Width: 2, Kind: Signed},
	PacketMainBrushCurrent:     {Name: "main-brush-current", Width: 2, Kind: Signed},
	PacketSideBrushCurrent:     {Name: "side-brush-current", Width: 2, Kind: Signed},
	PacketStasis: {Name: "stasis", Width: 1, Kind: BitFlags,
		Bits: []string{"toggling", "disabled"}},

	PacketGroup0:   {Name: "group-0", Members: span(7, 26)},
	PacketGroup1:   {Name: "group-1", Members: span(7, 16)},
	PacketGroup2:   {Name: "group-2", Members: span(17, 20)},
	PacketGroup3:   {Name: "group-3", Members: span(21, 26)},
	PacketGroup4:   {Name: "group-4", Members: span(27, 34)},
	PacketGroup5:   {Name: "group-5", Members: span(35, 42)},
	PacketGroup6:   {Name: "group-6", Members: span(7, 42)},
	PacketGroupAll: {Name: "group-100", Members: span(7, 58)},
	PacketGroup101: {Name: "group-101", Members: span(43, 58)},
	PacketGroup106: {Name: "group-106", Members: span(46, 51)},
	PacketGroup107: {Name: "group-107", Members: span(54, 58)},
}

func init() {
	for id, spec := range sensorCatalog {
		spec.ID = id
	}
}

// span lists packet ids from lo to hi inclusive.
func span(lo, hi SensorID) []SensorID {
	ids := make([]SensorID, 0, int(hi-lo)+1)
	for id := lo; id <= hi; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Sensor looks up a SensorSpec by packet id. The catalog is immutable,
// callers must not modify the returned spec.
func Sensor(id SensorID) (*SensorSpec, bool) {
	spec, ok := sensorCatalog[id]
	return spec, ok
}
