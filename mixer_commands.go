// mixer_commands.go - Command channel protocol for the mixer/playback engine

package autotune

// CommandKind enumerates the single-producer command variants the mixer
// accepts, per the component design.
type CommandKind int

const (
	CmdSendTrack CommandKind = iota
	CmdRemoveTrack
	CmdClearBuffer
	CmdPlay
	CmdStop
	CmdSetReadPosition
	CmdSetVolume
	CmdBroadcastPosition
	CmdShutdown
)

// Command is the single-producer message the mixer's command loop consumes.
// Only the payload fields used by Kind are meaningful (SendTrack uses
// TrackID and Audio, RemoveTrack TrackID, SetReadPosition Frame, SetVolume
// Volume); the others are left zero.
type Command struct {
	Kind CommandKind

	TrackID uint32
	Audio   *Audio

	Frame  int
	Volume float32
}

// SendTrackCmd inserts or replaces a track by id.
func SendTrackCmd(trackID uint32, audio *Audio) Command {
	return Command{Kind: CmdSendTrack, TrackID: trackID, Audio: audio}
}

// RemoveTrackCmd deletes a track by id.
func RemoveTrackCmd(trackID uint32) Command {
	return Command{Kind: CmdRemoveTrack, TrackID: trackID}
}

// ClearBufferCmd drops all tracks, zeroes the mix buffer, and resets position to 0.
func ClearBufferCmd() Command { return Command{Kind: CmdClearBuffer} }

// PlayCmd starts playback (sets playing = true).
func PlayCmd() Command { return Command{Kind: CmdPlay} }

// StopCmd stops playback (sets playing = false).
func StopCmd() Command { return Command{Kind: CmdStop} }

// SetReadPositionCmd sets the read position, clamped to the mix buffer length.
func SetReadPositionCmd(frame int) Command {
	return Command{Kind: CmdSetReadPosition, Frame: frame}
}

// SetVolumeCmd sets the output volume, clamped to [0,1].
func SetVolumeCmd(volume float32) Command {
	return Command{Kind: CmdSetVolume, Volume: volume}
}

// BroadcastPositionCmd requests the mixer send its current position upstream.
func BroadcastPositionCmd() Command { return Command{Kind: CmdBroadcastPosition} }

// ShutdownCmd ends command processing: the command loop ignores every later
// command, and the hardware callback then outputs silence forever.
func ShutdownCmd() Command { return Command{Kind: CmdShutdown} }

// PositionUpdate is the one-direction message the mixer broadcasts upstream
// to the UI, shaped like a SetReadPosition command.
type PositionUpdate struct {
	Frame int
}
