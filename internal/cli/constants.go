package cli

// Default values for CLI flags and formatted output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2

	// setCommandArgs is the number of arguments of config set.
	setCommandArgs = 2
)
