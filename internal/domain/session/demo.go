package session

import "github.com/varad-more/Voyagent/internal/domain/itinerary"

// DemoDocument is a canned multi-city itinerary used to explore the app
// without calling the planner. It carries no server identity, so it can
// be edited and exported but not saved or shared by reference.
func DemoDocument() itinerary.Payload {
	return itinerary.Payload{
		Request: itinerary.RequestSummary{
			Destination: "Tempe -> Grand Canyon -> Las Vegas",
			StartDate:   "2026-04-01",
			EndDate:     "2026-04-05",
		},
		Days: []itinerary.DayPlan{
			{
				Date:           "2026-04-01",
				DayNumber:      1,
				Theme:          "Tempe & ASU Vibes",
				WeatherSummary: "Sunny, 28°C",
				Blocks: []itinerary.ScheduleBlock{
					{
						StartTime:   "14:00",
						EndTime:     "16:00",
						Title:       "Explore Mill Avenue",
						Description: "Walk through the vibrant Mill Avenue District near ASU.",
						BlockType:   itinerary.BlockActivity,
						Location:    "Tempe, AZ",
						MicroActivities: []itinerary.MicroActivity{
							{Name: "Shop at local boutiques"},
							{Name: "Visit ASU campus"},
							{Name: "Coffee at Cartel"},
						},
					},
					{
						StartTime:   "16:30",
						EndTime:     "18:00",
						Title:       "Papago Park Sunset",
						Description: "Easy hike to Hole-in-the-Rock for scenic views.",
						BlockType:   itinerary.BlockActivity,
						Location:    "Papago Park",
						MicroActivities: []itinerary.MicroActivity{
							{Name: "Hike Hole-in-the-Rock"},
							{Name: "Desert Botanical Garden view"},
						},
					},
					{
						StartTime:   "19:00",
						EndTime:     "21:00",
						Title:       "Dinner at Culinary Dropout",
						Description: "Enjoy gastropub fare and games.",
						BlockType:   itinerary.BlockMeal,
						Location:    "Tempe",
					},
				},
			},
			{
				Date:           "2026-04-02",
				DayNumber:      2,
				Theme:          "Drive to the Grand Canyon",
				WeatherSummary: "Clear, 22°C (cooler at elevation)",
				Blocks: []itinerary.ScheduleBlock{
					{
						StartTime:      "08:00",
						EndTime:        "12:00",
						Title:          "Drive to South Rim",
						Description:    "Scenic drive north through Sedona and Flagstaff.",
						BlockType:      itinerary.BlockTravel,
						Location:       "En route",
						TravelTimeMins: 240,
					},
					{
						StartTime:   "13:00",
						EndTime:     "17:00",
						Title:       "Grand Canyon South Rim",
						Description: "First views of the canyon and Rim Trail walk.",
						BlockType:   itinerary.BlockActivity,
						Location:    "Grand Canyon Village",
						MicroActivities: []itinerary.MicroActivity{
							{Name: "Mather Point"},
							{Name: "Yavapai Geology Museum"},
							{Name: "Rim Trail"},
						},
					},
					{
						StartTime:   "18:00",
						EndTime:     "20:00",
						Title:       "Dinner at El Tovar",
						Description: "Historic dining with canyon views (reservation needed).",
						BlockType:   itinerary.BlockMeal,
						Location:    "Grand Canyon Village",
					},
				},
			},
			{
				Date:           "2026-04-03",
				DayNumber:      3,
				Theme:          "Canyon Morning & Vegas Lights",
				WeatherSummary: "Sunny, 15°C -> 30°C in Vegas",
				Blocks: []itinerary.ScheduleBlock{
					{
						StartTime:   "06:00",
						EndTime:     "08:00",
						Title:       "Sunrise at Hopi Point",
						Description: "Watch the sunrise light up the canyon walls.",
						BlockType:   itinerary.BlockActivity,
						Location:    "Hermit Road",
					},
					{
						StartTime:      "10:00",
						EndTime:        "15:00",
						Title:          "Drive to Las Vegas via Hoover Dam",
						Description:    "Drive west, stopping at Hoover Dam.",
						BlockType:      itinerary.BlockTravel,
						Location:       "En route",
						TravelTimeMins: 300,
						MicroActivities: []itinerary.MicroActivity{
							{Name: "Hoover Dam photo op"},
						},
					},
					{
						StartTime:   "19:00",
						EndTime:     "22:00",
						Title:       "Las Vegas Strip",
						Description: "Walk the strip and see the Bellagio Fountains.",
						BlockType:   itinerary.BlockActivity,
						Location:    "Las Vegas Strip",
						MicroActivities: []itinerary.MicroActivity{
							{Name: "Bellagio Fountains"},
							{Name: "Caesars Palace"},
							{Name: "The Linq Promenade"},
						},
					},
				},
			},
		},
		TransportAnalysis: &itinerary.TransportAnalysis{
			RecommendedMode: "Rental Car",
			Reasoning:       "Essential for multi-city travel in the Southwest.",
			Options: []itinerary.TransportOption{
				{
					Mode:             "rental_car",
					CostEstimate:     "$300 total",
					DurationEstimate: "Flexible",
					Description:      "SUV recommended for comfort.",
				},
			},
		},
		Budget: itinerary.BudgetPlan{
			Currency:       "USD",
			TotalBudget:    2200,
			EstimatedTotal: 2200,
			Breakdown: []itinerary.BudgetItem{
				{Category: "accommodation", EstimatedCost: 800},
				{Category: "transportation", EstimatedCost: 400},
				{Category: "food", EstimatedCost: 500},
				{Category: "activities", EstimatedCost: 300},
				{Category: "miscellaneous", EstimatedCost: 200},
			},
		},
	}
}
