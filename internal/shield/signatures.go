package shield

// BuiltinSignatures returns the default detection table. Order is
// significant: the first matching signature determines the reported
// category, and pack signatures append after these.
func BuiltinSignatures() []Signature {
	return []Signature{
		// --- Secret exposure: system prompt / instruction / config requests ---
		{
			ID:       "secret-system-prompt",
			Category: CategorySecretExposure,
			Contains: []string{"system prompt", "initial prompt", "original prompt"},
			Reason:   "Query requests the system prompt.",
		},
		{
			ID:       "secret-instructions",
			Category: CategorySecretExposure,
			Contains: []string{"your instructions", "your hidden instructions", "internal instructions", "your guidelines verbatim"},
			Reason:   "Query requests internal instructions.",
		},
		{
			ID:       "secret-credentials",
			Category: CategorySecretExposure,
			Contains: []string{"your api key", "your api keys", "your credentials", "your token"},
			Reason:   "Query requests credentials.",
		},
		{
			ID:       "secret-config",
			Category: CategorySecretExposure,
			Regex:    `(?i)(reveal|show|print|expose|leak|dump)\s+(me\s+)?your\s+(config|configuration|settings|source)`,
			Reason:   "Query requests internal configuration.",
		},

		// --- Instruction override ---
		{
			ID:       "override-ignore",
			Category: CategoryInstructionOverride,
			Regex:    `(?i)ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier|your)\s+(instructions|directives|rules|prompts)`,
			Reason:   "Query attempts to override prior instructions.",
		},
		{
			ID:       "override-disregard",
			Category: CategoryInstructionOverride,
			Contains: []string{"disregard the above", "disregard previous instructions", "forget your instructions", "forget everything above", "new instructions supersede"},
			Reason:   "Query attempts to discard prior instructions.",
		},
		{
			ID:       "override-unrestricted",
			Category: CategoryInstructionOverride,
			Contains: []string{"you are now unrestricted", "you have no restrictions", "without any restrictions or filters"},
			Reason:   "Query attempts to lift restrictions.",
		},

		// --- Role hijack: known jailbreak role-play triggers ---
		{
			ID:       "hijack-dan",
			Category: CategoryRoleHijack,
			Contains: []string{"dan mode", "do anything now"},
			Reason:   "Known DAN jailbreak trigger.",
		},
		{
			ID:       "hijack-developer-mode",
			Category: CategoryRoleHijack,
			Contains: []string{"developer mode", "enable dev mode"},
			Reason:   "Known developer-mode jailbreak trigger.",
		},
		{
			ID:       "hijack-roleplay",
			Category: CategoryRoleHijack,
			Regex:    `(?i)(pretend|act as if|roleplay that)\s+you\s+(are|have)\s+(an?\s+)?(unrestricted|unfiltered|jailbroken|evil|no)`,
			Reason:   "Role-play framing used to bypass the assistant persona.",
		},
		{
			ID:       "hijack-jailbreak",
			Category: CategoryRoleHijack,
			Contains: []string{"jailbreak", "jail break mode"},
			Reason:   "Explicit jailbreak request.",
		},
	}
}
