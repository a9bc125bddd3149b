package ldapauth

// maskSensitiveData masks usernames, DNs and server names for logging.
// Credentials themselves are never logged, masked or otherwise.
func maskSensitiveData(data string) string {
	if len(data) <= 4 {
		return "***"
	}
	return data[:2] + "***" + data[len(data)-2:]
}
