package workflow

// User-facing status lines. Every failure kind shares one message.
const (
	MsgIdle         = "Select both files, then submit."
	MsgMissingInput = "Please upload BOTH files!"
	MsgSubmitting   = "Processing... Please wait."
	MsgSucceeded    = "Processing Done! Download your files below."
	MsgFailed       = "Error processing files."
)

// StatusMessage returns the status line for s.
func StatusMessage(s State) string {
	switch s.(type) {
	case Submitting:
		return MsgSubmitting
	case Succeeded:
		return MsgSucceeded
	case Failed:
		return MsgFailed
	default:
		return MsgIdle
	}
}
