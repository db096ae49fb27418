package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the API server database
	DefaultDatabasePath = "./library.db"

	// DefaultSessionDatabasePath is where the web UI keeps browser sessions
	DefaultSessionDatabasePath = "./library-sessions.db"

	// DefaultCredentialsPath is the CLI's encrypted credential file
	DefaultCredentialsPath = "./.library-credentials.db"
)

// DefaultIssuer is the iss claim written into bearer tokens.
const DefaultIssuer = "library"
