package tagfarm

// Short messages (one-liners)
const (
	MsgRootShort    = "Build linkfarms from Stash catalog data"
	MsgBuildShort   = "Build the linkfarm from catalog data"
	MsgCleanShort   = "Remove dangling symlinks from the linkfarm"
	MsgInitShort    = "Create a sample configuration file"
	MsgVersionShort = "Print version information"

	// Flag descriptions
	MsgFlagConfig  = "Path to configuration file"
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview changes without executing them"
	MsgFlagFormat  = "Output format (auto, term, text, json)"
	MsgFlagPrune   = "Remove group directories left empty by the clean"
	MsgFlagOutput  = "Output path for the configuration file"
	MsgFlagForce   = "Overwrite an existing configuration file"
)

// Long messages
const (
	MsgRootLong = `tagfarm organizes the media files referenced by a Stash catalog into a
browsable directory tree of symbolic links, grouped by tag and by
performer. Configure which tags and performers to include, then run
'tagfarm build' to create the tree and 'tagfarm clean' to drop links
whose targets have disappeared.

Both commands are safe to re-run: an unchanged catalog converges to a
run that changes nothing, and --dry-run previews any run without
touching the filesystem.`

	MsgBuildLong = `Build fetches the selected tags and performers from the catalog and
reconciles them against the farm tree: missing links are created, links
pointing at moved files are replaced, and correct links are left alone.
Links that the selection does not derive are never touched.`

	MsgCleanLong = `Clean walks the farm tree and removes every symlink whose target no
longer exists. Links whose targets cannot be inspected (for example due
to permissions) are reported but left in place.`

	MsgInitLong = `Init writes a commented sample configuration file. Edit it to point at
your Stash server and linkfarm directory.`
)
