package payroll_fraud

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// RingInput defines the input parameters for the shared-account and shared-device ring tools.
type RingInput struct {
	MinSharers int `json:"minSharers,omitempty" validate:"gte=0" jsonschema:"description=Minimum number of employees that must share the account or device (inclusive). Defaults to 2."`
}

func SharedAccountRingsSpec() mcp.Tool {
	return mcp.NewTool("find-shared-account-rings",
		mcp.WithDescription(`Find "ghost family" rings: bank accounts receiving salary deposits for several employees.

A legitimate account normally receives one salary. An account shared by N or more employees is a strong
indicator of ghost workers whose pay is routed to a single beneficiary.

Returns one entry per qualifying account, ordered by sharer count (largest first; ties keep discovery order),
with a masked account label and up to five sample employee names.`),
		mcp.WithInputSchema[RingInput](),
		mcp.WithTitleAnnotation("Find Shared Account Rings"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func SharedDeviceRingsSpec() mcp.Tool {
	return mcp.NewTool("find-shared-device-rings",
		mcp.WithDescription(`Find "buddy punching" rings: attendance or login devices used by several employees.

Employees clocking in from one shared device suggest that one person is recording attendance for others,
or that the accounts are controlled by the same operator.

Returns one entry per qualifying device, ordered by sharer count (largest first; ties keep discovery order),
with up to five sample employee names.`),
		mcp.WithInputSchema[RingInput](),
		mcp.WithTitleAnnotation("Find Shared Device Rings"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}
