package catalog

// DemoItems is the sample catalog loaded at startup.
var DemoItems = []Fields{
	{Name: "Chocolate Bar", Category: "Chocolate", Price: 2.50, Quantity: 50},
	{Name: "Gummy Bears", Category: "Gummy", Price: 5.00, Quantity: 100},
	{Name: "Lollipop", Category: "Hard Candy", Price: 1.00, Quantity: 200},
	{Name: "Caramel Chew", Category: "Caramel", Price: 0.75, Quantity: 150},
	{Name: "Sour Patch Kids", Category: "Sour", Price: 4.50, Quantity: 15},
}

func Seed(s Store, items []Fields) error {
	for _, f := range items {
		if _, err := s.Add(f); err != nil {
			return err
		}
	}
	return nil
}
