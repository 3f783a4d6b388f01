package protocol

// Device IDs for droid subsystems. The engine itself is agnostic to these;
// they are the catalog callers use to address commands.
const (
	DeviceCore        uint8 = 0x00
	DeviceBootloader  uint8 = 0x01
	DeviceAPIAndShell uint8 = 0x10
	DeviceSystemInfo  uint8 = 0x11
	DevicePower       uint8 = 0x13
	DeviceDrive       uint8 = 0x16
	DeviceAnimatronic uint8 = 0x17
	DeviceSensor      uint8 = 0x18
	DeviceConnection  uint8 = 0x19
	DeviceIO          uint8 = 0x1A
	DeviceFirmware    uint8 = 0x1F
)

// Core commands (0x00).
const (
	CmdPing                  uint8 = 0x00
	CmdGetAPIProtocolVersion uint8 = 0x01
)

// Power commands (0x13).
const (
	CmdEnterDeepSleep                   uint8 = 0x00
	CmdSleep                            uint8 = 0x01
	CmdGetBatteryVoltage                uint8 = 0x03
	CmdGetBatteryState                  uint8 = 0x04
	CmdEnableBatteryStateNotify         uint8 = 0x05
	CmdForceBatteryRefresh              uint8 = 0x0C
	CmdWake                             uint8 = 0x0D
	CmdGetBatteryPercentage             uint8 = 0x10
	CmdGetBatteryVoltageState           uint8 = 0x17
	CmdEnableBatteryVoltageStateNotify  uint8 = 0x1B
	CmdGetChargerState                  uint8 = 0x1F
	CmdGetBatteryVoltageInVolts         uint8 = 0x25
	CmdGetBatteryVoltageStateThresholds uint8 = 0x26
)

// Drive commands (0x16).
const (
	CmdSetRawMotors                  uint8 = 0x01
	CmdResetYaw                      uint8 = 0x06
	CmdDriveWithHeading              uint8 = 0x07
	CmdGenericRawMotor               uint8 = 0x0B
	CmdSetStabilization              uint8 = 0x0C
	CmdSetControlSystemType          uint8 = 0x0E
	CmdSetCustomControlSystemTimeout uint8 = 0x22
	CmdEnableMotorStallNotify        uint8 = 0x25
	CmdEnableMotorFaultNotify        uint8 = 0x27
	CmdGetMotorFaultState            uint8 = 0x29
)

// Animatronic commands (0x17).
const (
	CmdPlayAnimation         uint8 = 0x05
	CmdPerformLegAction      uint8 = 0x0D
	CmdSetHeadPosition       uint8 = 0x0F
	CmdGetHeadPosition       uint8 = 0x14
	CmdSetLegPosition        uint8 = 0x15
	CmdGetLegPosition        uint8 = 0x16
	CmdGetLegAction          uint8 = 0x25
	CmdEnableLegActionNotify uint8 = 0x2A
	CmdStopAnimation         uint8 = 0x2B
	CmdEnableIdleAnimations  uint8 = 0x2C
	CmdEnableTrophyMode      uint8 = 0x2D
	CmdGetTrophyModeEnabled  uint8 = 0x2E
	CmdEnableHeadResetNotify uint8 = 0x39
)

// Sensor commands (0x18).
const (
	CmdSetSensorStreamingMask      uint8 = 0x00
	CmdGetSensorStreamingMask      uint8 = 0x01
	CmdSensorStreamingData         uint8 = 0x02
	CmdSetExtendedStreamingMask    uint8 = 0x0C
	CmdGetExtendedStreamingMask    uint8 = 0x0D
	CmdEnableGyroMaxNotify         uint8 = 0x0F
	CmdConfigureCollisionDetection uint8 = 0x11
	CmdCollisionDetectedNotify     uint8 = 0x12
	CmdEnableCollisionNotify       uint8 = 0x14
	CmdConfigureStreamingService   uint8 = 0x39
	CmdStartStreamingService       uint8 = 0x3A
	CmdStreamingServiceData        uint8 = 0x3D
	CmdStopStreamingService        uint8 = 0x3B
	CmdClearStreamingService       uint8 = 0x3C
)

// SystemInfo commands (0x11).
const (
	CmdGetMainAppVersion    uint8 = 0x00
	CmdGetBootloaderVersion uint8 = 0x01
	CmdGetBoardRevision     uint8 = 0x03
	CmdGetMACAddress        uint8 = 0x06
	CmdGetStatsID           uint8 = 0x13
	CmdGetProcessorName     uint8 = 0x1F
	CmdGetSKU               uint8 = 0x38
)

// IO commands (0x1A).
const (
	CmdSetLED                uint8 = 0x04
	CmdPlayAudioFile         uint8 = 0x07
	CmdSetAudioVolume        uint8 = 0x08
	CmdGetAudioVolume        uint8 = 0x09
	CmdStopAllAudio          uint8 = 0x0A
	CmdSetAllLEDs16BitMask   uint8 = 0x0E
	CmdStartIdleLEDAnimation uint8 = 0x19
	CmdSetAllLEDs32BitMask   uint8 = 0x1A
	CmdSetAllLEDs8BitMask    uint8 = 0x1C
	CmdReleaseLEDRequests    uint8 = 0x4E
)
