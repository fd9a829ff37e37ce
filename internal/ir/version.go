package ir

// ClientVersion is the recon client version reported in logs and the CLI.
const ClientVersion = "0.1.0"
