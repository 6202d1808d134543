package chain

// capGas applies the configured max_gas ceiling to an
// adjustment-multiplied gas estimate (spec §6 "max_gas"; grounded on
// rust:cosmos_chain/src/tx/estimate.rs's adjust_estimated_gas, which
// multiplies by gas_multiplier then clamps to max_gas). cosmos-sdk's
// tx.Factory already applies the multiplier during simulation; this
// only adds the cap the Factory has no native concept of.
func capGas(estimated, maxGas uint64) uint64 {
	if maxGas == 0 || estimated <= maxGas {
		return estimated
	}
	return maxGas
}
