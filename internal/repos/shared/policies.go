package shared

// ConfirmationPolicy specifies how destructive configuration changes are confirmed.
type ConfirmationPolicy int

const (
	// ConfirmationPrompt asks the user before overwriting or deleting.
	ConfirmationPrompt ConfirmationPolicy = iota
	// ConfirmationAssumeYes continues without prompting.
	ConfirmationAssumeYes
)

// ConfirmationPolicyFromBool converts the --yes flag into a policy.
func ConfirmationPolicyFromBool(assumeYes bool) ConfirmationPolicy {
	if assumeYes {
		return ConfirmationAssumeYes
	}
	return ConfirmationPrompt
}

// ShouldPrompt reports whether the user must be asked.
func (policy ConfirmationPolicy) ShouldPrompt() bool {
	return policy != ConfirmationAssumeYes
}

// Confirm asks the prompter unless the policy assumes yes.
func (policy ConfirmationPolicy) Confirm(prompter ConfirmationPrompter, prompt string) (bool, error) {
	if !policy.ShouldPrompt() {
		return true, nil
	}
	if prompter == nil {
		return false, nil
	}
	return prompter.Confirm(prompt)
}
