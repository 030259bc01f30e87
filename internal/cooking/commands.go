package cooking

import "strings"

// Command is an action the cook can trigger by voice or button.
type Command string

// Commands understood by the session.
const (
	CmdNone     Command = ""
	CmdNext     Command = "next"
	CmdPrevious Command = "previous"
	CmdPause    Command = "pause"
	CmdResume   Command = "resume"
	CmdMute     Command = "mute"
	CmdUnmute   Command = "unmute"
	CmdRepeat   Command = "repeat"
	CmdComplete Command = "complete"
	CmdExit     Command = "exit"
)

// keywordCommands maps spoken keywords to commands. Matching is a plain
// case-insensitive substring check over the transcript; the first entry
// that matches wins, so order is significant ("back" must not shadow
// "playback", etc. is not a concern at this vocabulary size).
var keywordCommands = []struct {
	keywords []string
	cmd      Command
}{
	{[]string{"next", "continue"}, CmdNext},
	{[]string{"previous", "back"}, CmdPrevious},
	{[]string{"pause", "stop"}, CmdPause},
	{[]string{"resume", "play"}, CmdResume},
	{[]string{"mute", "silence"}, CmdMute},
	{[]string{"complete", "finish"}, CmdComplete},
	{[]string{"exit", "quit"}, CmdExit},
	{[]string{"repeat"}, CmdRepeat},
}

// ParseVoiceCommand maps a transcript to a Command. Unrecognized speech
// returns CmdNone; there are no confidence thresholds.
func ParseVoiceCommand(transcript string) Command {
	t := strings.ToLower(transcript)
	for _, entry := range keywordCommands {
		for _, kw := range entry.keywords {
			if strings.Contains(t, kw) {
				return entry.cmd
			}
		}
	}
	return CmdNone
}
