package bento

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"kiji-testing/types"
)

// SiteFile models a Hadoop *-site.xml configuration document.
type SiteFile struct {
	XMLName    xml.Name       `xml:"configuration"`
	Properties []SiteProperty `xml:"property"`
}

type SiteProperty struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

// Property names the address discovery relies on.
const (
	propZooKeeperClientPort = "hbase.zookeeper.property.clientPort"
	propDefaultFS           = "fs.defaultFS"
	propJobTracker          = "mapred.job.tracker"
)

// ParseSiteFile decodes a Hadoop site XML document.
func ParseSiteFile(data []byte) (*SiteFile, error) {
	var site SiteFile
	if err := xml.Unmarshal(data, &site); err != nil {
		return nil, types.Wrap(types.ErrInvalidSiteFile, err)
	}
	return &site, nil
}

// Get returns the value of a named property.
func (s *SiteFile) Get(name string) (string, bool) {
	for _, prop := range s.Properties {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// ZooKeeperAddress extracts the ZooKeeper address from the HBase site
// file, eg. "localhost:2181".
func (s *SiteFile) ZooKeeperAddress() (string, error) {
	value, ok := s.Get(propZooKeeperClientPort)
	if !ok {
		return "", types.Wrapf(types.ErrAddressNotFound, "no %s property", propZooKeeperClientPort)
	}
	port, err := strconv.Atoi(value)
	if err != nil {
		return "", types.Wrapf(types.ErrInvalidSiteFile, "bad %s value %q", propZooKeeperClientPort, value)
	}
	return fmt.Sprintf("localhost:%d", port), nil
}

// HDFSAddress extracts the HDFS address from the core site file,
// eg. "hdfs://localhost:8020/".
func (s *SiteFile) HDFSAddress() (string, error) {
	value, ok := s.Get(propDefaultFS)
	if !ok {
		return "", types.Wrapf(types.ErrAddressNotFound, "no %s property", propDefaultFS)
	}
	return value, nil
}

// MapReduceAddress extracts the job tracker address from the mapred
// site file, eg. "localhost:8021".
func (s *SiteFile) MapReduceAddress() (string, error) {
	value, ok := s.Get(propJobTracker)
	if !ok {
		return "", types.Wrapf(types.ErrAddressNotFound, "no %s property", propJobTracker)
	}
	return value, nil
}
