package catalog

import "github.com/utafrali/shopfront/internal/domain"

// SeedProducts is the built-in demo catalog, used when no database is
// configured. Order matters: it is the tie-break order for ambiguous
// chat commands.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: "laptop-1", Title: "Basic Laptop", Price: 45000, ImageURL: "https://via.placeholder.com/200x150/4CAF50/white?text=Basic+Laptop"},
		{ID: "laptop-2", Title: "Gaming Laptop", Price: 75000, ImageURL: "https://via.placeholder.com/200x150/FF5722/white?text=Gaming+Laptop"},
		{ID: "laptop-3", Title: "Pro Laptop", Price: 95000, ImageURL: "https://via.placeholder.com/200x150/2196F3/white?text=Pro+Laptop"},
		{ID: "phone-1", Title: "Basic Phone", Price: 15000, ImageURL: "https://via.placeholder.com/200x150/9C27B0/white?text=Basic+Phone"},
		{ID: "phone-2", Title: "Pro Phone", Price: 35000, ImageURL: "https://via.placeholder.com/200x150/E91E63/white?text=Pro+Phone"},
		{ID: "phone-3", Title: "Flagship Phone", Price: 55000, ImageURL: "https://via.placeholder.com/200x150/3F51B5/white?text=Flagship+Phone"},
		{ID: "headphone-1", Title: "Wired Headphones", Price: 2000, ImageURL: "https://via.placeholder.com/200x150/795548/white?text=Wired"},
		{ID: "headphone-2", Title: "Wireless Headphones", Price: 5000, ImageURL: "https://via.placeholder.com/200x150/607D8B/white?text=Wireless"},
		{ID: "headphone-3", Title: "Premium Headphones", Price: 8000, ImageURL: "https://via.placeholder.com/200x150/009688/white?text=Premium"},
		{ID: "tablet-1", Title: "Basic Tablet", Price: 25000, ImageURL: "https://via.placeholder.com/200x150/FF9800/white?text=Basic+Tablet"},
		{ID: "tablet-2", Title: "Pro Tablet", Price: 45000, ImageURL: "https://via.placeholder.com/200x150/F44336/white?text=Pro+Tablet"},
		{ID: "accessory-1", Title: "Wireless Mouse", Price: 1500, ImageURL: "https://via.placeholder.com/200x150/8BC34A/white?text=Mouse"},
		{ID: "accessory-2", Title: "Keyboard", Price: 3000, ImageURL: "https://via.placeholder.com/200x150/CDDC39/black?text=Keyboard"},
		{ID: "accessory-3", Title: "Webcam", Price: 4000, ImageURL: "https://via.placeholder.com/200x150/FFC107/black?text=Webcam"},
	}
}
