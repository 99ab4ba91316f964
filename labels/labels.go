// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package labels translates coded MovieLens 1M attributes into readable labels,
// following the README shipped with the dataset. Each call returns a fresh copy.
//
//	labels.Age()[18]       // "18-24"
//	labels.Occupation()[7] // "executive/managerial"
package labels

import "maps"

var ages = map[int]string{
	1:  "Under 18",
	18: "18-24",
	25: "25-34",
	35: "35-44",
	45: "45-49",
	50: "50-55",
	56: "56+",
}

var occupations = map[int]string{
	0:  "other or not specified",
	1:  "academic/educator",
	2:  "artist",
	3:  "clerical/admin",
	4:  "college/grad student",
	5:  "customer service",
	6:  "doctor/health care",
	7:  "executive/managerial",
	8:  "farmer",
	9:  "homemaker",
	10: "K-12 student",
	11: "lawyer",
	12: "programmer",
	13: "retired",
	14: "sales/marketing",
	15: "scientist",
	16: "self-employed",
	17: "technician/engineer",
	18: "tradesman/craftsman",
	19: "unemployed",
	20: "writer",
}

var genders = map[string]string{
	"F": "female",
	"M": "male",
}

var genres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Children's",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Fantasy",
	"Film-Noir",
	"Horror",
	"Musical",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Thriller",
	"War",
	"Western",
}

// Age maps age codes to age ranges.
func Age() map[int]string {
	return maps.Clone(ages)
}

// Occupation maps occupation codes (0-20) to occupations.
func Occupation() map[int]string {
	return maps.Clone(occupations)
}

// Gender maps gender codes to genders.
func Gender() map[string]string {
	return maps.Clone(genders)
}

// Genres lists all movie genres.
func Genres() []string {
	return append([]string(nil), genres...)
}
