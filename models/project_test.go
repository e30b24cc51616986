package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductionChecklist_Complete(t *testing.T) {
	complete := ProductionChecklist{
		DrawingsFinalized:        true,
		SpecificationsVerified:   true,
		CustomerApprovalReceived: true,
		MaterialListConfirmed:    true,
		ProductionNotesAdded:     true,
	}
	require.True(t, complete.Complete())

	require.False(t, ProductionChecklist{}.Complete())

	// Any single unchecked item blocks the handoff.
	missingOne := complete
	missingOne.MaterialListConfirmed = false
	require.False(t, missingOne.Complete())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []ProjectStatus{StatusRequested, StatusInProgress, StatusReview, StatusApproved, StatusProduction} {
		require.True(t, ValidStatus(s))
	}
	require.False(t, ValidStatus("completed"))
	require.False(t, ValidStatus(""))
}

func TestValidProductType(t *testing.T) {
	for _, p := range []ProductType{ProductStorm, ProductSanitary, ProductElectrical, ProductMeter} {
		require.True(t, ValidProductType(p))
	}
	require.False(t, ValidProductType("rebar"))
}

func TestValidStructureType(t *testing.T) {
	for _, s := range []StructureType{StructureSSMH, StructureSDMH, StructureInlets, StructureVaults, StructureMeterPits, StructureAirVacuumPits} {
		require.True(t, ValidStructureType(s))
	}
	require.False(t, ValidStructureType("ssmh"))
}
