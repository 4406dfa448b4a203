package service

import (
	"context"
)

// DemoCustomers are the accounts the dashboard ships with.
var DemoCustomers = []CustomerCreateInput{
	{Name: "John Doe", Address: "123 Main St", MonthlyUsage: 450},
	{Name: "Jane Smith", Address: "456 Oak Ave", MonthlyUsage: 320},
	{Name: "Mike Johnson", Address: "789 Pine Rd", MonthlyUsage: 890},
}

// SeedDemoCustomers inserts the demo accounts when the registry is empty and
// returns how many were created.
func SeedDemoCustomers(ctx context.Context, customers *CustomerService) (int, error) {
	count, err := customers.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	for i, input := range DemoCustomers {
		if _, err := customers.Create(ctx, input); err != nil {
			return i, err
		}
	}
	return len(DemoCustomers), nil
}
