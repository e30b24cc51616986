package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lindsay-precast/backend/design-service/models"
)

func validCustomer() CreateCustomerInput {
	return CreateCustomerInput{
		Name: "Acme Utilities",
		ContactInfo: models.ContactInfo{
			Email: "office@acme-utilities.com",
			Phone: "(303) 555-0142",
		},
	}
}

func TestValidateCustomer_Valid(t *testing.T) {
	require.Empty(t, validateCustomer(validCustomer()))
}

func TestValidateCustomer_ListsEveryInvalidField(t *testing.T) {
	in := CreateCustomerInput{
		Name: "A",
		ContactInfo: models.ContactInfo{
			Email: "not-an-email",
			Phone: "303-555-0142",
		},
	}

	fields := validateCustomer(in)

	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	require.True(t, got["name"])
	require.True(t, got["contactInfo.email"])
	require.True(t, got["contactInfo.phone"])
	require.Len(t, fields, 3)
}

func TestValidateCustomer_PhoneFormat(t *testing.T) {
	in := validCustomer()

	in.ContactInfo.Phone = "(303) 555-0142"
	require.Empty(t, validateCustomer(in))

	for _, phone := range []string{"3035550142", "(303)555-0142", "(303) 5550142", ""} {
		in.ContactInfo.Phone = phone
		fields := validateCustomer(in)
		require.Len(t, fields, 1, "phone %q", phone)
		require.Equal(t, "contactInfo.phone", fields[0].Field)
	}
}

func TestValidateCustomer_Address(t *testing.T) {
	in := validCustomer()
	in.ContactInfo.Address = models.Address{State: "Colorado", ZipCode: "8030"}

	fields := validateCustomer(in)

	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	require.True(t, got["contactInfo.address.state"])
	require.True(t, got["contactInfo.address.zipCode"])

	in.ContactInfo.Address = models.Address{State: "CO", ZipCode: "80301"}
	require.Empty(t, validateCustomer(in))
}
